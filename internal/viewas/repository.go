package viewas

import (
	"context"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
)

// Repository looks up the members a viewer can be switched to.
type Repository struct {
	store *store.Store
}

// NewRepository creates a view-as repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// GetByID returns a member by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	var out *models.Member
	var err error
	r.store.Read(func(d *store.Data) {
		var m *models.Member
		m, err = d.Member(id)
		if err == nil {
			cp := *m
			out = &cp
		}
	})
	return out, err
}

// FirstWithRole returns the first fixture member holding role, or nil.
func (r *Repository) FirstWithRole(ctx context.Context, role models.Role) *models.Member {
	var out *models.Member
	r.store.Read(func(d *store.Data) {
		if ms := d.MembersByRole(role); len(ms) > 0 {
			out = &ms[0]
		}
	})
	return out
}
