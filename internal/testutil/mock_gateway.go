package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/types"
)

// MockGateway is a scriptable gateway.Provider for service tests. By default
// CreatePayment succeeds and PollPayment reports PENDING; tests flip
// CreateErr or set PollStatus to script the scenario under test.
type MockGateway struct {
	mu sync.Mutex

	// CreateErr, when set, is returned from CreatePayment
	CreateErr error
	// PollErr, when set, is returned from PollPayment
	PollErr error
	// PollStatus is what PollPayment reports when PollErr is nil
	PollStatus types.GatewayPaymentStatus

	CreateCalls []*gateway.CreatePaymentRequest
	PollCalls   []string
}

// NewMockGateway creates a gateway mock that accepts everything
func NewMockGateway() *MockGateway {
	return &MockGateway{
		PollStatus: types.GatewayPaymentStatusPending,
	}
}

var _ gateway.Provider = (*MockGateway)(nil)

func (g *MockGateway) CreatePayment(ctx context.Context, req *gateway.CreatePaymentRequest) (*gateway.CreatePaymentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CreateCalls = append(g.CreateCalls, req)
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	return &gateway.CreatePaymentResponse{
		PollURL:     fmt.Sprintf("https://gateway.test/poll/%s", req.Reference),
		RedirectURL: fmt.Sprintf("https://gateway.test/pay/%s", req.Reference),
		Hash:        "test-hash",
	}, nil
}

func (g *MockGateway) PollPayment(ctx context.Context, pollURL string) (types.GatewayPaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.PollCalls = append(g.PollCalls, pollURL)
	if g.PollErr != nil {
		return "", g.PollErr
	}
	return g.PollStatus, nil
}

// FailCreates scripts CreatePayment to fail with a gateway error
func (g *MockGateway) FailCreates(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateErr = ierr.NewError(msg).
		WithHint("Payment gateway request failed").
		Mark(ierr.ErrGateway)
}

// Clear resets scripted behavior and recorded calls
func (g *MockGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateErr = nil
	g.PollErr = nil
	g.PollStatus = types.GatewayPaymentStatusPending
	g.CreateCalls = nil
	g.PollCalls = nil
}
