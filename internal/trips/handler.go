package trips

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

// SignRequest is the body for POST /trips/:id/permission-slips/:memberId/sign.
type SignRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// TripView is a trip with its derived timeline and slip tally.
type TripView struct {
	models.Trip
	Timeline    string `json:"timeline"`
	SlipsSigned int    `json:"slips_signed"`
	SlipsTotal  int    `json:"slips_total"`
	SpotsLeft   int    `json:"spots_left"`
}

// ListResponse is the trips page.
type ListResponse struct {
	Trips     []TripView `json:"trips"`
	Upcoming  int        `json:"upcoming"`
	Completed int        `json:"completed"`
}

// Handler handles trip HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a trips handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

func (h *Handler) view(t models.Trip) TripView {
	signed, total := t.SlipTally()
	spots := 0
	if t.MaxParticipants > 0 && t.MaxParticipants > len(t.Attendees) {
		spots = t.MaxParticipants - len(t.Attendees)
	}
	return TripView{
		Trip:        t,
		Timeline:    t.Timeline(h.now()),
		SlipsSigned: signed,
		SlipsTotal:  total,
		SpotsLeft:   spots,
	}
}

// List handles GET /trips.
func (h *Handler) List(c *gin.Context) {
	trips := h.repo.List(c.Request.Context())
	out := ListResponse{Trips: make([]TripView, 0, len(trips))}
	for _, t := range trips {
		v := h.view(t)
		switch v.Timeline {
		case models.TimelineUpcoming:
			out.Upcoming++
		case models.TimelineCompleted:
			out.Completed++
		}
		out.Trips = append(out.Trips, v)
	}
	response.OK(c, out)
}

// Get handles GET /trips/:id.
func (h *Handler) Get(c *gin.Context) {
	t, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c, "trip not found")
		return
	}
	response.OK(c, h.view(*t))
}

// Sign handles POST /trips/:id/permission-slips/:memberId/sign.
func (h *Handler) Sign(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	v := middleware.ViewerFrom(c)

	member, err := h.repo.Member(ctx, c.Param("memberId"))
	if err != nil {
		response.NotFound(c, "member not found")
		return
	}
	var self *models.Member
	if v.MemberID != "" {
		self, _ = h.repo.Member(ctx, v.MemberID)
	}
	if !policy.CanSignFor(v, *member, self) {
		response.Forbidden(c, "you may not sign for this member")
		return
	}

	signer := v.Name
	if self != nil {
		signer = self.Name
	}
	if signer == "" {
		signer = v.Role.Label()
	}
	slip, err := h.repo.Sign(ctx, c.Param("id"), member.ID, Signature{SignedBy: signer, Artifact: req.Signature, At: h.now()})
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, "trip not found")
		return
	case errors.Is(err, ErrNotAttending):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, ErrAlreadySigned):
		response.Conflict(c, err.Error())
		return
	case err != nil:
		h.logger.Error("sign permission slip failed", zap.Error(err))
		response.Internal(c, "failed to sign permission slip")
		return
	}
	h.logger.Info("permission slip signed",
		zap.String("trip_id", c.Param("id")),
		zap.String("member_id", member.ID),
		zap.String("signed_by", signer),
	)
	response.OK(c, slip)
}
