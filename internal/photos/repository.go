package photos

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

var (
	ErrUnknownTag = errors.New("tag not suggested for this photo")
	ErrEmptyTag   = errors.New("tag is empty")
	ErrNoFace     = errors.New("no face detection at that index")
	ErrNoPhotos   = errors.New("archive is empty")
)

// Filter narrows a photo listing.
type Filter struct {
	Query string // matched against event, AI tags, verified tags and location
	Event string
}

// Repository reads and curates archive photos.
type Repository struct {
	store *store.Store
}

// NewRepository creates a photos repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

func (f Filter) match(p models.Photo) bool {
	if f.Event != "" && !utils.ContainsFold(p.Event, f.Event) {
		return false
	}
	if f.Query == "" {
		return true
	}
	return utils.ContainsFold(p.Event, f.Query) ||
		utils.AnyContainsFold(p.AITags, f.Query) ||
		utils.AnyContainsFold(p.VerifiedTags, f.Query) ||
		(p.Location != "" && utils.ContainsFold(p.Location, f.Query))
}

// List returns the photos matching f.
func (r *Repository) List(ctx context.Context, f Filter) []models.Photo {
	var out []models.Photo
	r.store.Read(func(d *store.Data) {
		for _, p := range d.Photos {
			if f.match(p) {
				out = append(out, p.Clone())
			}
		}
	})
	return out
}

// GetByID returns a photo by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	var out *models.Photo
	var err error
	r.store.Read(func(d *store.Data) {
		var p *models.Photo
		if p, err = d.Photo(id); err == nil {
			cp := p.Clone()
			out = &cp
		}
	})
	return out, err
}

// MemoryOfTheDay picks one photo per calendar day, cycling through the archive by day of year.
func (r *Repository) MemoryOfTheDay(ctx context.Context, day time.Time) (*models.Photo, error) {
	var out *models.Photo
	r.store.Read(func(d *store.Data) {
		if len(d.Photos) == 0 {
			return
		}
		p := d.Photos[day.YearDay()%len(d.Photos)].Clone()
		out = &p
	})
	if out == nil {
		return nil, ErrNoPhotos
	}
	return out, nil
}

// ToggleTag verifies tag on a photo, or unverifies it if already verified.
// It returns whether the tag is verified afterwards.
func (r *Repository) ToggleTag(ctx context.Context, id, tag string) (bool, error) {
	var verified bool
	err := r.store.Write(func(d *store.Data) error {
		p, err := d.Photo(id)
		if err != nil {
			return err
		}
		if !p.HasTag(tag) {
			return fmt.Errorf("%q: %w", tag, ErrUnknownTag)
		}
		verified = p.ToggleVerifiedTag(tag)
		return nil
	})
	return verified, err
}

// AddTag records a curator-supplied tag as both suggested and verified. Tags match exactly,
// as in ToggleTag and RemoveTag.
func (r *Repository) AddTag(ctx context.Context, id, tag string) (*models.Photo, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	var out models.Photo
	err := r.store.Write(func(d *store.Data) error {
		p, err := d.Photo(id)
		if err != nil {
			return err
		}
		if !slices.Contains(p.AITags, tag) {
			p.AITags = append(p.AITags, tag)
		}
		if !p.HasVerifiedTag(tag) {
			p.VerifiedTags = append(p.VerifiedTags, tag)
		}
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveTag drops tag from both the suggested and verified tags.
func (r *Repository) RemoveTag(ctx context.Context, id, tag string) (*models.Photo, error) {
	var out models.Photo
	err := r.store.Write(func(d *store.Data) error {
		p, err := d.Photo(id)
		if err != nil {
			return err
		}
		if !p.HasTag(tag) {
			return fmt.Errorf("%q: %w", tag, ErrUnknownTag)
		}
		p.AITags = without(p.AITags, tag)
		p.VerifiedTags = without(p.VerifiedTags, tag)
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyFace confirms the face detection at index. A non-empty memberID corrects the match first.
func (r *Repository) VerifyFace(ctx context.Context, id string, index int, memberID string) (*models.FaceDetection, error) {
	var out models.FaceDetection
	err := r.store.Write(func(d *store.Data) error {
		p, err := d.Photo(id)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(p.FaceDetections) {
			return fmt.Errorf("photo %s face %d: %w", id, index, ErrNoFace)
		}
		if memberID != "" {
			if _, err := d.Member(memberID); err != nil {
				return err
			}
			p.FaceDetections[index].MemberID = memberID
		}
		p.FaceDetections[index].Verified = true
		out = p.FaceDetections[index]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MemberNames maps member ids to names for labelling faces.
func (r *Repository) MemberNames(ctx context.Context) map[string]string {
	out := make(map[string]string)
	r.store.Read(func(d *store.Data) {
		for _, m := range d.Members {
			out[m.ID] = m.Name
		}
	})
	return out
}

func without(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
