package photos

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/response"
)

// UnknownFace labels a face detection without a member match.
const UnknownFace = "Unknown"

// AddTagRequest is the body for POST /photos/:id/tags.
type AddTagRequest struct {
	Tag string `json:"tag" binding:"required,max=64"`
}

// VerifyFaceRequest is the optional body for POST /photos/:id/faces/:index/verify.
type VerifyFaceRequest struct {
	MemberID string `json:"member_id"`
}

// PhotoView is a photo with its detected faces labelled.
type PhotoView struct {
	models.Photo
	FaceNames []string `json:"face_names"`
}

// ListResponse is the archive listing.
type ListResponse struct {
	Photos []PhotoView `json:"photos"`
	Total  int         `json:"total"`
}

// Handler handles photo archive HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a photos handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

func label(p models.Photo, names map[string]string) PhotoView {
	faces := make([]string, 0, len(p.FaceDetections))
	for _, f := range p.FaceDetections {
		name, ok := names[f.MemberID]
		if f.MemberID == "" || !ok {
			name = UnknownFace
		}
		faces = append(faces, name)
	}
	return PhotoView{Photo: p, FaceNames: faces}
}

// List handles GET /photos?q=&event=.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	photos := h.repo.List(ctx, Filter{Query: c.Query("q"), Event: c.Query("event")})
	names := h.repo.MemberNames(ctx)
	out := ListResponse{Photos: make([]PhotoView, 0, len(photos))}
	for _, p := range photos {
		out.Photos = append(out.Photos, label(p, names))
	}
	out.Total = len(out.Photos)
	response.OK(c, out)
}

// MemoryOfTheDay handles GET /photos/memory-of-the-day.
func (h *Handler) MemoryOfTheDay(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.repo.MemoryOfTheDay(ctx, h.now())
	if err != nil {
		response.NotFound(c, "no photos in the archive")
		return
	}
	response.OK(c, label(*p, h.repo.MemberNames(ctx)))
}

// ToggleTag handles POST /photos/:id/tags/:tag/verify (curate_archive).
func (h *Handler) ToggleTag(c *gin.Context) {
	id, tag := c.Param("id"), c.Param("tag")
	verified, err := h.repo.ToggleTag(c.Request.Context(), id, tag)
	if h.fail(c, err) {
		return
	}
	h.logger.Info("photo tag toggled",
		zap.String("photo_id", id),
		zap.String("tag", tag),
		zap.Bool("verified", verified),
		zap.String("by", middleware.ViewerFrom(c).MemberID),
	)
	response.OK(c, gin.H{"photo_id": id, "tag": tag, "verified": verified})
}

// AddTag handles POST /photos/:id/tags (curate_archive).
func (h *Handler) AddTag(c *gin.Context) {
	var req AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.repo.AddTag(c.Request.Context(), c.Param("id"), req.Tag)
	if h.fail(c, err) {
		return
	}
	response.Created(c, p)
}

// RemoveTag handles DELETE /photos/:id/tags/:tag (curate_archive).
func (h *Handler) RemoveTag(c *gin.Context) {
	p, err := h.repo.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if h.fail(c, err) {
		return
	}
	response.OK(c, p)
}

// VerifyFace handles POST /photos/:id/faces/:index/verify (curate_archive).
func (h *Handler) VerifyFace(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid face index")
		return
	}
	var req VerifyFaceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	face, err := h.repo.VerifyFace(c.Request.Context(), c.Param("id"), index, req.MemberID)
	if h.fail(c, err) {
		return
	}
	response.OK(c, face)
}

func (h *Handler) fail(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrUnknownTag), errors.Is(err, ErrEmptyTag), errors.Is(err, ErrNoFace):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("photo curation failed", zap.Error(err))
		response.Internal(c, "failed to update photo")
	}
	return true
}
