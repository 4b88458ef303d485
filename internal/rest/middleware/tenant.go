package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

// Paths that operate without a tenant identity. Webhooks are authenticated
// by signature verification instead.
var tenantExemptPaths = map[string]struct{}{
	"/health":             {},
	"/v1/webhooks/stripe": {},
}

// TenantMiddleware resolves the calling tenant and user from request headers
// and stores them on the request context. Every tenant-scoped query reads
// them from there.
func TenantMiddleware(c *gin.Context) {
	if _, exempt := tenantExemptPaths[c.Request.URL.Path]; exempt {
		c.Next()
		return
	}

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.Error(ierr.NewError("missing tenant header").
			WithHint("X-Tenant-ID header is required").
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}

	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, userID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
