package blasts

import (
	"context"
	"sort"
	"strings"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
)

// Repository stores blasts and resolves their recipients.
type Repository struct {
	store *store.Store
}

// NewRepository creates a blasts repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// List returns every blast, newest first.
func (r *Repository) List(ctx context.Context) []models.BlastMessage {
	var out []models.BlastMessage
	r.store.Read(func(d *store.Data) {
		for _, b := range d.Blasts {
			out = append(out, b.Clone())
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentDate.After(out[j].SentDate) })
	return out
}

// GetByID returns a blast by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.BlastMessage, error) {
	var out models.BlastMessage
	var err error
	r.store.Read(func(d *store.Data) {
		var b *models.BlastMessage
		if b, err = d.Blast(id); err == nil {
			out = b.Clone()
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new blast.
func (r *Repository) Create(ctx context.Context, b models.BlastMessage) error {
	return r.store.Write(func(d *store.Data) error {
		d.Blasts = append(d.Blasts, b.Clone())
		return nil
	})
}

// MarkRead records memberID as a reader of the blast. It reports whether the read was new.
func (r *Repository) MarkRead(ctx context.Context, id, memberID string) (bool, error) {
	var added bool
	err := r.store.Write(func(d *store.Data) error {
		b, err := d.Blast(id)
		if err != nil {
			return err
		}
		added = b.MarkRead(memberID)
		return nil
	})
	return added, err
}

// Resolve expands recipient tokens into members, in roster order and without duplicates.
// Plain tokens are member ids; unknown ids are ignored.
func (r *Repository) Resolve(ctx context.Context, tokens []string) []models.Member {
	var out []models.Member
	r.store.Read(func(d *store.Data) {
		for _, m := range d.Members {
			for _, t := range tokens {
				if matches(t, m) {
					out = append(out, m)
					break
				}
			}
		}
	})
	return out
}

func matches(token string, m models.Member) bool {
	switch token {
	case models.RecipientAll:
		return m.Role != models.RoleGuest
	case models.RecipientAllScouts:
		return m.Role.IsYouth()
	case models.RecipientParents:
		return m.Role == models.RoleParent
	case models.RecipientLeaders:
		switch m.Role {
		case models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL, models.RoleASPL:
			return true
		}
		return false
	}
	if patrol, ok := strings.CutPrefix(token, models.RecipientPatrolPrefix); ok {
		return patrol != "" && m.Patrol == patrol
	}
	return token == m.ID
}
