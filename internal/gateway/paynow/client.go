package paynow

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	initiateMobilePath = "/remotetransaction"

	statusOK    = "Ok"
	statusError = "Error"
)

// Client talks the Paynow form-encoded protocol: every request carries a
// SHA512 hash of the concatenated field values plus the integration key, and
// responses come back URL-encoded.
type Client struct {
	cfg    config.PaynowConfig
	client *http.Client
	log    *logger.Logger
}

// New creates a Paynow gateway client. Create calls are retried on transport
// errors only; the gateway treats a repeated reference as the same intent, so
// retrying is safe.
func New(cfg config.PaynowConfig, log *logger.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil

	return &Client{
		cfg:    cfg,
		client: rc.StandardClient(),
		log:    log,
	}
}

var _ gateway.Provider = (*Client)(nil)

// CreatePayment registers a mobile money payment intent with Paynow
func (c *Client) CreatePayment(ctx context.Context, req *gateway.CreatePaymentRequest) (*gateway.CreatePaymentResponse, error) {
	form := url.Values{}
	form.Set("id", c.cfg.IntegrationID)
	form.Set("reference", req.Reference)
	form.Set("amount", req.Amount.StringFixed(2))
	form.Set("additionalinfo", req.Description)
	form.Set("returnurl", c.cfg.ReturnURL)
	form.Set("resulturl", c.cfg.ResultURL)
	form.Set("authemail", req.AuthEmail)
	form.Set("phone", req.PhoneNumber)
	form.Set("method", strings.ToLower(req.Method.String()))
	form.Set("status", "Message")
	form.Set("hash", c.hash(form))

	values, err := c.postForm(ctx, c.cfg.BaseURL+initiateMobilePath, form)
	if err != nil {
		return nil, err
	}

	if values.Get("status") != statusOK {
		return nil, ierr.NewError("gateway rejected payment").
			WithHintf("Payment gateway error: %s", values.Get("error")).
			WithReportableDetails(map[string]any{
				"reference": req.Reference,
			}).
			Mark(ierr.ErrGateway)
	}

	return &gateway.CreatePaymentResponse{
		PollURL:     values.Get("pollurl"),
		RedirectURL: values.Get("browserurl"),
		Hash:        values.Get("hash"),
	}, nil
}

// PollPayment fetches the current transaction status by poll URL
func (c *Client) PollPayment(ctx context.Context, pollURL string) (types.GatewayPaymentStatus, error) {
	values, err := c.postForm(ctx, pollURL, url.Values{})
	if err != nil {
		return "", err
	}

	return mapStatus(values.Get("status")), nil
}

// mapStatus folds Paynow's status vocabulary into the three states the
// payment machine cares about. Unknown statuses stay PENDING: only an
// explicit failure from the gateway may fail a payment.
func mapStatus(s string) types.GatewayPaymentStatus {
	switch strings.ToLower(s) {
	case "paid", "awaiting delivery", "delivered":
		return types.GatewayPaymentStatusPaid
	case "cancelled", "failed", "disputed", "refunded":
		return types.GatewayPaymentStatusFailed
	default:
		return types.GatewayPaymentStatusPending
	}
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) (url.Values, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid gateway request").
			Mark(ierr.ErrGateway)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Payment gateway unreachable").
			Mark(ierr.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, ierr.NewError("gateway returned error status").
			WithHintf("Payment gateway responded with HTTP %d", resp.StatusCode).
			Mark(ierr.ErrGateway)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read gateway response").
			Mark(ierr.ErrGateway)
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed gateway response").
			Mark(ierr.ErrGateway)
	}
	return values, nil
}

// hash signs the request: SHA512 over the concatenated field values in
// insertion order followed by the integration key, uppercase hex.
func (c *Client) hash(form url.Values) string {
	fields := []string{"id", "reference", "amount", "additionalinfo", "returnurl", "resulturl", "authemail", "phone", "method", "status"}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(form.Get(f))
	}
	b.WriteString(c.cfg.IntegrationKey)

	sum := sha512.Sum512([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
