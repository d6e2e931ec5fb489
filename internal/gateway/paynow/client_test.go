package paynow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	return New(config.PaynowConfig{
		BaseURL:        srv.URL,
		IntegrationID:  "12345",
		IntegrationKey: "test-integration-key",
		ResultURL:      "https://fleet.example.com/v1/payments/webhook",
		ReturnURL:      "https://fleet.example.com/billing",
		Timeout:        5 * time.Second,
	}, log), srv
}

func TestCreatePayment_Success(t *testing.T) {
	var gotForm url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		resp := url.Values{}
		resp.Set("status", "Ok")
		resp.Set("pollurl", "https://gateway.example.com/poll/abc123")
		resp.Set("browserurl", "https://gateway.example.com/pay/abc123")
		resp.Set("hash", "CAFE")
		w.Write([]byte(resp.Encode()))
	})

	resp, err := client.CreatePayment(context.Background(), &gateway.CreatePaymentRequest{
		Reference:   "INV-000041",
		Amount:      decimal.RequireFromString("29.99"),
		PhoneNumber: "0771234567",
		Method:      types.PaymentMethodEcocash,
		Description: "BASIC subscription",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example.com/poll/abc123", resp.PollURL)
	assert.Equal(t, "https://gateway.example.com/pay/abc123", resp.RedirectURL)

	assert.Equal(t, "INV-000041", gotForm.Get("reference"))
	assert.Equal(t, "29.99", gotForm.Get("amount"))
	assert.Equal(t, "ecocash", gotForm.Get("method"))
	assert.NotEmpty(t, gotForm.Get("hash"))
	// hash must be deterministic for the same form
	assert.Len(t, gotForm.Get("hash"), 128)
}

func TestCreatePayment_GatewayError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := url.Values{}
		resp.Set("status", "Error")
		resp.Set("error", "Invalid integration id")
		w.Write([]byte(resp.Encode()))
	})

	_, err := client.CreatePayment(context.Background(), &gateway.CreatePaymentRequest{
		Reference:   "INV-000042",
		Amount:      decimal.NewFromInt(10),
		PhoneNumber: "0771234567",
		Method:      types.PaymentMethodEcocash,
	})
	require.Error(t, err)
	assert.True(t, ierr.IsGateway(err))
}

func TestPollPayment_StatusMapping(t *testing.T) {
	tests := []struct {
		gatewayStatus string
		want          types.GatewayPaymentStatus
	}{
		{"Paid", types.GatewayPaymentStatusPaid},
		{"Awaiting Delivery", types.GatewayPaymentStatusPaid},
		{"Cancelled", types.GatewayPaymentStatusFailed},
		{"Failed", types.GatewayPaymentStatusFailed},
		{"Created", types.GatewayPaymentStatusPending},
		{"Sent", types.GatewayPaymentStatusPending},
		{"totally-unknown", types.GatewayPaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.gatewayStatus, func(t *testing.T) {
			client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				resp := url.Values{}
				resp.Set("status", tt.gatewayStatus)
				w.Write([]byte(resp.Encode()))
			})

			status, err := client.PollPayment(context.Background(), srv.URL+"/poll")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestPollPayment_Unreachable(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.PollPayment(context.Background(), srv.URL+"/poll")
	require.Error(t, err)
	assert.True(t, ierr.IsGateway(err))
}
