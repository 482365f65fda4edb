package newsletters

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/pkg/response"
)

// ListResponse is the body of GET /newsletters.
type ListResponse struct {
	Newsletters []models.Newsletter `json:"newsletters"`
	Total       int                 `json:"total"`
	Query       string              `json:"query,omitempty"`
}

// Handler handles newsletter archive endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a newsletters handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /newsletters?q=.
func (h *Handler) List(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	items := h.repo.Search(c.Request.Context(), q)
	if items == nil {
		items = []models.Newsletter{}
	}
	h.logger.Debug("newsletter search", zap.String("query", q), zap.Int("hits", len(items)))
	response.OK(c, ListResponse{Newsletters: items, Total: len(items), Query: q})
}
