package middleware

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/gin-gonic/gin"
)

// TenantMiddleware resolves the tenant scope from the X-Tenant-ID header set
// by the upstream auth layer. Requests without one are rejected before they
// reach any tenant-scoped code.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.Error(ierr.NewError("missing tenant header").
			WithHintf("The %s header is required", types.HeaderTenantID).
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
