package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/pkg/response"
)

// Recovery turns a panic in any handler into the catch-all 500 envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.Crashed(c)
	})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	response.NotFound(c, "not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	response.MethodNotAllowed(c, "method not allowed")
}
