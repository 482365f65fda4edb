package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/pkg/response"
)

const (
	// ContextViewer is the key for the policy.Viewer in gin context.
	ContextViewer = "viewer"
)

// ViewerParser turns a bearer token into a viewer context.
type ViewerParser interface {
	ParseViewer(token string) (policy.Viewer, error)
}

// Viewer returns a middleware that attaches the request's viewer to the context.
// A request without an Authorization header is served as a guest; a malformed or
// expired token is rejected.
func Viewer(tokens ViewerParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(ContextViewer, policy.Guest)
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		v, err := tokens.ParseViewer(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextViewer, v)
		c.Next()
	}
}

// ViewerFrom returns the viewer attached by Viewer, or the guest viewer.
func ViewerFrom(c *gin.Context) policy.Viewer {
	if v, ok := c.Get(ContextViewer); ok {
		if viewer, ok := v.(policy.Viewer); ok {
			return viewer
		}
	}
	return policy.Guest
}
