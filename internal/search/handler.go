package search

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/pkg/response"
)

// Handler handles GET /search.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a search handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Search handles GET /search?q=.
func (h *Handler) Search(c *gin.Context) {
	res := h.repo.Search(c.Request.Context(), middleware.ViewerFrom(c), c.Query("q"))
	h.logger.Debug("search", zap.String("query", res.Query), zap.Int("hits", res.Total))
	response.OK(c, res)
}
