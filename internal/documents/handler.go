package documents

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

// ListQuery is the query for GET /documents.
type ListQuery struct {
	Type   string `form:"type" binding:"omitempty,oneof=medical permission waiver policy newsletter"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// UploadRequest is the body for POST /documents. File contents are not accepted.
type UploadRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	Type           string `json:"type" binding:"required,oneof=medical permission waiver policy newsletter"`
	Description    string `json:"description" binding:"max=1000"`
	RequiredFor    string `json:"required_for" binding:"omitempty,oneof=all_scouts trip optional"`
	AssociatedTrip string `json:"associated_trip"`
}

// SignRequest is the body for POST /documents/:id/sign/:memberId.
type SignRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// Handler handles document vault HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a documents handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

// List handles GET /documents?type=&status=. Viewers who cannot approve documents only see
// approved documents and their own uploads.
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query: "+err.Error())
		return
	}
	v := middleware.ViewerFrom(c)
	f := Filter{Type: models.DocumentType(q.Type), Status: models.DocumentStatus(q.Status)}
	if !policy.CanApproveDocument(v.Role) {
		f.Restricted = true
		f.Uploader = v.MemberID
	}
	docs := h.repo.List(c.Request.Context(), f)
	if docs == nil {
		docs = []models.Document{}
	}
	response.OK(c, docs)
}

// Approve handles POST /documents/:id/approve (approve_document).
func (h *Handler) Approve(c *gin.Context) {
	h.review(c, models.DocumentApproved)
}

// Reject handles POST /documents/:id/reject (approve_document).
func (h *Handler) Reject(c *gin.Context) {
	h.review(c, models.DocumentRejected)
}

func (h *Handler) review(c *gin.Context, status models.DocumentStatus) {
	v := middleware.ViewerFrom(c)
	reviewer := v.MemberID
	if reviewer == "" {
		reviewer = string(v.Role)
	}
	doc, err := h.repo.Review(c.Request.Context(), c.Param("id"), status, reviewer)
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, "document not found")
		return
	case errors.Is(err, ErrAlreadyReviewed):
		response.Conflict(c, err.Error())
		return
	case err != nil:
		h.logger.Error("document review failed", zap.Error(err))
		response.Internal(c, "failed to review document")
		return
	}
	h.logger.Info("document reviewed", zap.String("document_id", doc.ID), zap.String("status", string(status)), zap.String("by", reviewer))
	response.OK(c, doc)
}

// Submissions handles GET /documents/submissions (view_all_submissions).
func (h *Handler) Submissions(c *gin.Context) {
	subs := h.repo.Submissions(c.Request.Context())
	if subs == nil {
		subs = []TripSubmissions{}
	}
	response.OK(c, subs)
}

// Upload handles POST /documents. Any signed-in member may upload; the record starts pending.
func (h *Handler) Upload(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	if v.MemberID == "" {
		response.Forbidden(c, "sign in as a member to upload documents")
		return
	}
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if models.RequiredFor(req.RequiredFor) == models.RequiredTrip && req.AssociatedTrip == "" {
		response.BadRequest(c, "associated_trip is required when required_for is trip")
		return
	}
	doc, err := h.repo.Create(c.Request.Context(), Upload{
		Name:           req.Name,
		Type:           models.DocumentType(req.Type),
		Description:    req.Description,
		RequiredFor:    models.RequiredFor(req.RequiredFor),
		AssociatedTrip: req.AssociatedTrip,
		UploadedBy:     v.MemberID,
		At:             h.now(),
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.BadRequest(c, "associated trip not found")
		return
	case err != nil:
		h.logger.Error("document upload failed", zap.Error(err))
		response.Internal(c, "failed to upload document")
		return
	}
	h.logger.Info("document uploaded", zap.String("document_id", doc.ID), zap.String("by", v.MemberID))
	response.Created(c, doc)
}

// Required handles GET /documents/required, the parent's list of documents to sign.
func (h *Handler) Required(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	if v.Role != models.RoleParent || v.MemberID == "" {
		response.Forbidden(c, "only parents have required documents")
		return
	}
	parent, err := h.repo.Member(c.Request.Context(), v.MemberID)
	if err != nil {
		response.NotFound(c, "member not found")
		return
	}
	docs := h.repo.Required(c.Request.Context(), *parent)
	if docs == nil {
		docs = []RequiredDocument{}
	}
	response.OK(c, docs)
}

// Sign handles POST /documents/:id/sign/:memberId.
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

	by := v.MemberID
	if by == "" {
		by = string(v.Role)
	}
	sub, err := h.repo.Sign(ctx, c.Param("id"), member.ID, Signature{SubmittedBy: by, Artifact: req.Signature, At: h.now()})
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, "document not found")
		return
	case errors.Is(err, ErrNotRequired), errors.Is(err, ErrNotApproved):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, ErrAlreadySigned):
		response.Conflict(c, err.Error())
		return
	case err != nil:
		h.logger.Error("document signing failed", zap.Error(err))
		response.Internal(c, "failed to sign document")
		return
	}
	h.logger.Info("document signed",
		zap.String("document_id", sub.DocumentID),
		zap.String("member_id", member.ID),
		zap.String("by", by),
	)
	response.Created(c, sub)
}
