package types

import (
	"context"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxUserID    ContextKey = "ctx_user_id"

	// HeaderRequestID is echoed back on every response
	HeaderRequestID = "X-Request-ID"
	// HeaderTenantID carries the tenant scope resolved by the upstream
	// auth layer. The core never infers a tenant from anywhere else.
	HeaderTenantID = "X-Tenant-ID"

	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(CtxTenantID).(string); ok {
		return tenantID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetTenantID sets the tenant ID in the context
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// ValidateTenantContext verifies a tenant scope is present. Service entry
// points that stamp or cache by the ambient tenant call this first; the
// reconciler's cross-tenant sweeps are exempt.
func ValidateTenantContext(ctx context.Context) error {
	if ctx == nil || GetTenantID(ctx) == "" {
		return ierr.NewError("missing tenant scope").
			WithHint("A tenant scope is required for this operation").
			Mark(ierr.ErrPermissionDenied)
	}

	return nil
}
