package roster

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/response"
)

// UpdateRequest is the body for PATCH /roster/:id.
type UpdateRequest struct {
	Rank          *string `json:"rank"`
	Patrol        *string `json:"patrol"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	MedicalStatus *string `json:"medical_status" binding:"omitempty,medical_status"`
}

// ListResponse is the roster as rendered for the viewer.
type ListResponse struct {
	Members []models.MemberView `json:"members"`
	Patrols []string            `json:"patrols"`
	Total   int                 `json:"total"`
	Privacy policy.Summary      `json:"privacy"`
}

// Handler handles roster HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a roster handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /roster?q=&patrol=.
func (h *Handler) List(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	scope, ok := policy.RosterScope(v)
	if !ok {
		response.Forbidden(c, "the roster is only accessible to scoutmasters, SPL, ASPL and patrol leaders")
		return
	}

	members, patrols := h.repo.List(c.Request.Context(), scope, Filter{
		Query:  c.Query("q"),
		Patrol: c.Query("patrol"),
	})
	views := make([]models.MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, policy.Project(v, m))
	}
	if patrols == nil {
		patrols = []string{}
	}
	response.OK(c, ListResponse{
		Members: views,
		Patrols: patrols,
		Total:   len(views),
		Privacy: policy.Capabilities(v),
	})
}

// Get handles GET /roster/:id.
func (h *Handler) Get(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	scope, ok := policy.RosterScope(v)
	if !ok {
		response.Forbidden(c, "the roster is only accessible to scoutmasters, SPL, ASPL and patrol leaders")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || !m.Role.IsYouth() || !scope.Includes(*m) {
		response.NotFound(c, "member not found")
		return
	}
	response.OK(c, policy.Project(v, *m))
}

// Update handles PATCH /roster/:id (edit_roster).
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u := Update{Rank: req.Rank, Patrol: req.Patrol, Phone: req.Phone, Address: req.Address}
	if req.MedicalStatus != nil {
		ms := models.MedicalStatus(*req.MedicalStatus)
		u.MedicalStatus = &ms
	}

	m, err := h.repo.Update(c.Request.Context(), c.Param("id"), u)
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, "member not found")
		return
	case errors.Is(err, ErrUnknownPatrol), errors.Is(err, ErrUnknownRank):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("roster update failed", zap.Error(err), zap.String("member_id", c.Param("id")))
		response.Internal(c, "failed to update member")
		return
	}
	v := middleware.ViewerFrom(c)
	h.logger.Info("roster updated", zap.String("member_id", m.ID), zap.String("by", v.MemberID))
	response.OK(c, policy.Project(v, *m))
}
