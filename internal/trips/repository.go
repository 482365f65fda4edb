package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

var (
	ErrNotAttending  = errors.New("member is not attending this trip")
	ErrAlreadySigned = errors.New("permission slip already signed")
)

// Signature is a completed permission slip signature.
type Signature struct {
	SignedBy string
	Artifact string
	At       time.Time
}

// Repository reads trips and records permission slip signatures.
type Repository struct {
	store *store.Store
}

// NewRepository creates a trips repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// List returns every trip in fixture order.
func (r *Repository) List(ctx context.Context) []models.Trip {
	var out []models.Trip
	r.store.Read(func(d *store.Data) {
		out = make([]models.Trip, 0, len(d.Trips))
		for _, t := range d.Trips {
			out = append(out, t.Clone())
		}
	})
	return out
}

// GetByID returns a trip by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	var out *models.Trip
	var err error
	r.store.Read(func(d *store.Data) {
		var t *models.Trip
		if t, err = d.Trip(id); err == nil {
			cp := t.Clone()
			out = &cp
		}
	})
	return out, err
}

// Member returns a member by id.
func (r *Repository) Member(ctx context.Context, id string) (*models.Member, error) {
	var out *models.Member
	var err error
	r.store.Read(func(d *store.Data) {
		var m *models.Member
		if m, err = d.Member(id); err == nil {
			cp := *m
			out = &cp
		}
	})
	return out, err
}

// Sign marks memberID's slip on tripID as signed. Attendees without a slip get one.
func (r *Repository) Sign(ctx context.Context, tripID, memberID string, sig Signature) (*models.PermissionSlip, error) {
	var out models.PermissionSlip
	err := r.store.Write(func(d *store.Data) error {
		t, err := d.Trip(tripID)
		if err != nil {
			return err
		}
		if !t.HasAttendee(memberID) {
			return fmt.Errorf("trip %s member %s: %w", tripID, memberID, ErrNotAttending)
		}
		idx := -1
		for i := range t.PermissionSlips {
			if t.PermissionSlips[i].MemberID == memberID {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.PermissionSlips = append(t.PermissionSlips, models.PermissionSlip{MemberID: memberID})
			idx = len(t.PermissionSlips) - 1
		}
		slip := &t.PermissionSlips[idx]
		if slip.Signed {
			return fmt.Errorf("trip %s member %s: %w", tripID, memberID, ErrAlreadySigned)
		}
		slip.Signed = true
		slip.SignedDate = sig.At.Format(models.DateLayout)
		slip.SignedBy = sig.SignedBy
		slip.SignatureDigest = utils.SignatureDigest(sig.Artifact)
		out = *slip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
