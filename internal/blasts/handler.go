package blasts

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/queue"
	"github.com/troop78/troophub/pkg/response"
)

// BlastView is a blast with its read statistics.
type BlastView struct {
	models.BlastMessage
	RecipientCount int `json:"recipient_count"`
	ReadCount      int `json:"read_count"`
}

// SendResponse is the body of a successful POST /blasts.
type SendResponse struct {
	Blast      BlastView `json:"blast"`
	JobID      string    `json:"job_id"`
	Recipients int       `json:"recipients"`
}

// Handler handles blast endpoints.
type Handler struct {
	repo     *Repository
	queue    queue.JobQueue
	recorder DeliveryRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a blasts handler.
func NewHandler(repo *Repository, q queue.JobQueue, recorder DeliveryRecorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, queue: q, recorder: recorder, logger: logger, now: time.Now}
}

func (h *Handler) view(c *gin.Context, b models.BlastMessage) BlastView {
	return BlastView{
		BlastMessage:   b,
		RecipientCount: len(h.repo.Resolve(c.Request.Context(), b.Recipients)),
		ReadCount:      len(b.ReadBy),
	}
}

// List handles GET /blasts (send_broadcast).
func (h *Handler) List(c *gin.Context) {
	list := h.repo.List(c.Request.Context())
	out := make([]BlastView, 0, len(list))
	for _, b := range list {
		out = append(out, h.view(c, b))
	}
	response.OK(c, out)
}

// Send handles POST /blasts (send_broadcast; emergency blasts need send_emergency_broadcast).
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	v := middleware.ViewerFrom(c)
	blast, err := Compose(v, req, h.now())
	switch {
	case errors.Is(err, ErrBroadcastNotPermitted), errors.Is(err, ErrEmergencyNotPermitted):
		response.Forbidden(c, err.Error())
		return
	case err != nil:
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	members := h.repo.Resolve(ctx, blast.Recipients)
	if err := h.repo.Create(ctx, blast); err != nil {
		h.logger.Error("create blast failed", zap.Error(err))
		response.Internal(c, "failed to save blast")
		return
	}

	payload := queue.BlastDeliveryPayload{
		BlastID:     blast.ID,
		Title:       blast.Title,
		IsEmergency: blast.IsEmergency,
	}
	for _, ch := range blast.Channels {
		payload.Channels = append(payload.Channels, string(ch))
	}
	for _, m := range members {
		payload.Recipients = append(payload.Recipients, queue.Recipient{MemberID: m.ID, Name: m.Name, Phone: m.Phone, Email: m.Email})
	}
	job, err := h.queue.EnqueueBlastDelivery(ctx, payload)
	if err != nil {
		h.logger.Error("enqueue blast delivery failed", zap.String("blast_id", blast.ID), zap.Error(err))
		response.ServiceUnavailable(c, "delivery queue unavailable")
		return
	}

	h.logger.Info("blast queued",
		zap.String("blast_id", blast.ID),
		zap.String("sender", blast.Sender),
		zap.Bool("emergency", blast.IsEmergency),
		zap.Int("recipients", len(members)),
	)
	response.Accepted(c, SendResponse{
		Blast:      BlastView{BlastMessage: blast, RecipientCount: len(members)},
		JobID:      job.ID,
		Recipients: len(members),
	})
}

// MarkRead handles POST /blasts/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	if v.MemberID == "" {
		response.BadRequest(c, "viewer is not a troop member")
		return
	}
	added, err := h.repo.MarkRead(c.Request.Context(), c.Param("id"), v.MemberID)
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, "blast not found")
		return
	}
	if err != nil {
		h.logger.Error("mark blast read failed", zap.Error(err))
		response.Internal(c, "failed to mark read")
		return
	}
	response.OK(c, gin.H{"blast_id": c.Param("id"), "member_id": v.MemberID, "newly_read": added})
}

// Deliveries handles GET /blasts/:id/deliveries (send_broadcast).
func (h *Handler) Deliveries(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.repo.GetByID(ctx, c.Param("id")); err != nil {
		response.NotFound(c, "blast not found")
		return
	}
	logs, err := h.recorder.List(ctx, c.Param("id"))
	if err != nil {
		h.logger.Error("list deliveries failed", zap.Error(err))
		response.Internal(c, "failed to list deliveries")
		return
	}
	if logs == nil {
		logs = []models.DeliveryLog{}
	}
	response.OK(c, logs)
}
