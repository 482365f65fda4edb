package archivesync

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/pkg/response"
)

// StartResponse is the body of POST /sync.
type StartResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Stream string `json:"stream"`
}

// Handler exposes the sync manager over HTTP.
type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHandler creates a sync handler.
func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: manager, logger: logger}
}

// Start handles POST /sync.
func (h *Handler) Start(c *gin.Context) {
	run, err := h.manager.Start(middleware.ViewerFrom(c))
	switch {
	case errors.Is(err, ErrNotPermitted):
		response.Forbidden(c, "insufficient permissions")
		return
	case errors.Is(err, ErrSyncInProgress):
		response.Conflict(c, err.Error())
		return
	case err != nil:
		h.logger.Error("start sync failed", zap.Error(err))
		response.Internal(c, "failed to start sync")
		return
	}
	response.Accepted(c, StartResponse{RunID: run.ID, Status: run.Status, Stream: "/ws?run_id=" + run.ID})
}

// List handles GET /sync.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.manager.History())
}

// Get handles GET /sync/:id.
func (h *Handler) Get(c *gin.Context) {
	run, err := h.manager.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, "sync run not found")
		return
	}
	response.OK(c, run)
}

// Cancel handles DELETE /sync/:id.
func (h *Handler) Cancel(c *gin.Context) {
	run, err := h.manager.Cancel(c.Param("id"))
	if err != nil {
		response.NotFound(c, "sync run not found")
		return
	}
	run.Events = nil
	response.OK(c, run)
}

// Reset handles DELETE /sync and forgets finished runs.
func (h *Handler) Reset(c *gin.Context) {
	response.OK(c, gin.H{"removed": h.manager.Reset()})
}
