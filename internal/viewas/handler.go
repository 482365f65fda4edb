package viewas

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/response"
)

// Switchable lists the roles offered by the role switcher, in display order.
var Switchable = []models.Role{
	models.RoleScoutmaster,
	models.RoleSPL,
	models.RolePatrolLeader,
	models.RoleParent,
	models.RoleScout,
	models.RoleGuest,
}

// ViewAsRequest is the body for POST /view-as. Either MemberID or Role is required.
type ViewAsRequest struct {
	MemberID string `json:"member_id"`
	Role     string `json:"role" binding:"omitempty,troop_role"`
	Patrol   string `json:"patrol"`
}

// RoleOption is one entry of the role switcher.
type RoleOption struct {
	Role   models.Role    `json:"role"`
	Label  string         `json:"label"`
	Member *models.Member `json:"member,omitempty"`
}

// TokenResponse is the view-as response with the signed token.
type TokenResponse struct {
	Token        string         `json:"token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Viewer       policy.Viewer  `json:"viewer"`
	Capabilities policy.Summary `json:"capabilities"`
}

// MeResponse describes the current viewer.
type MeResponse struct {
	Viewer       policy.Viewer  `json:"viewer"`
	Capabilities policy.Summary `json:"capabilities"`
}

// Handler handles role switcher HTTP endpoints.
type Handler struct {
	repo   *Repository
	tokens *TokenService
	logger *zap.Logger
}

// NewHandler creates a view-as handler.
func NewHandler(repo *Repository, tokens *TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tokens: tokens, logger: logger}
}

// Roles handles GET /view-as/roles.
func (h *Handler) Roles(c *gin.Context) {
	ctx := c.Request.Context()
	out := make([]RoleOption, 0, len(Switchable))
	for _, r := range Switchable {
		opt := RoleOption{Role: r, Label: r.Label()}
		if r != models.RoleGuest {
			opt.Member = h.repo.FirstWithRole(ctx, r)
		}
		out = append(out, opt)
	}
	response.OK(c, out)
}

// ViewAs handles POST /view-as.
func (h *Handler) ViewAs(c *gin.Context) {
	var req ViewAsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.MemberID == "" && req.Role == "" {
		response.BadRequest(c, "member_id or role is required")
		return
	}

	ctx := c.Request.Context()
	var v policy.Viewer
	switch {
	case req.MemberID != "":
		m, err := h.repo.GetByID(ctx, req.MemberID)
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "member not found")
			return
		}
		if err != nil {
			h.logger.Error("view-as lookup failed", zap.Error(err))
			response.Internal(c, "failed to switch viewer")
			return
		}
		v = policy.ViewerFor(*m)
	default:
		role := models.ParseRole(req.Role)
		v = policy.Viewer{Role: role, Patrol: req.Patrol}
		if role != models.RoleGuest && req.Patrol == "" {
			if m := h.repo.FirstWithRole(ctx, role); m != nil {
				v = policy.ViewerFor(*m)
			}
		}
	}

	token, expires, err := h.tokens.Generate(v)
	if err != nil {
		h.logger.Error("sign view-as token failed", zap.Error(err))
		response.Internal(c, "failed to switch viewer")
		return
	}
	h.logger.Info("viewer switched", zap.String("role", string(v.Role)), zap.String("member_id", v.MemberID))
	response.OK(c, TokenResponse{
		Token:        token,
		ExpiresAt:    expires,
		Viewer:       v,
		Capabilities: policy.Capabilities(v),
	})
}

// Me handles GET /me.
func (h *Handler) Me(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	response.OK(c, MeResponse{Viewer: v, Capabilities: policy.Capabilities(v)})
}
