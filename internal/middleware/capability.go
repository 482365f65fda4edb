package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/pkg/response"
)

// RequireCapability returns a middleware that allows only viewers holding c.
func RequireCapability(c policy.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		v := ViewerFrom(ctx)
		if !policy.Has(v.Role, c) {
			response.Forbidden(ctx, "insufficient permissions")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
