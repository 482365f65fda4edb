package dashboard

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/troop78/troophub/pkg/response"
)

// Handler handles GET /dashboard.
type Handler struct {
	repo     *Repository
	schedule *rrule.RRule
	meetings int
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a dashboard handler. schedule may be nil when no meeting recurrence is configured.
func NewHandler(repo *Repository, schedule *rrule.RRule, meetings int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, schedule: schedule, meetings: meetings, logger: logger, now: time.Now}
}

// Get handles GET /dashboard.
func (h *Handler) Get(c *gin.Context) {
	now := h.now()
	d := h.repo.Build(c.Request.Context(), now)
	d.NextMeetings = NextMeetings(h.schedule, now, h.meetings)
	response.OK(c, d)
}
