package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

var (
	ErrUnknownPatrol = errors.New("unknown patrol")
	ErrUnknownRank   = errors.New("unknown rank")
)

// Filter narrows a roster listing.
type Filter struct {
	Query  string // matched against name, email and rank
	Patrol string
}

// Update holds the editable member fields. Nil fields are left unchanged.
type Update struct {
	Rank          *string
	Patrol        *string
	Phone         *string
	Address       *string
	MedicalStatus *models.MedicalStatus
}

// Repository reads and edits roster members.
type Repository struct {
	store *store.Store
}

// NewRepository creates a roster repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// List returns the youth members inside scope that match f, and the patrols present in scope.
func (r *Repository) List(ctx context.Context, scope policy.Scope, f Filter) ([]models.Member, []string) {
	var list []models.Member
	seen := make(map[string]struct{})
	var patrols []string
	r.store.Read(func(d *store.Data) {
		for _, m := range d.Members {
			if !m.Role.IsYouth() || !scope.Includes(m) {
				continue
			}
			if m.Patrol != "" {
				if _, ok := seen[m.Patrol]; !ok {
					seen[m.Patrol] = struct{}{}
					patrols = append(patrols, m.Patrol)
				}
			}
			if f.Patrol != "" && m.Patrol != f.Patrol {
				continue
			}
			if f.Query != "" && !utils.ContainsFold(m.Name, f.Query) && !utils.ContainsFold(m.Email, f.Query) && !utils.ContainsFold(m.Rank, f.Query) {
				continue
			}
			list = append(list, m)
		}
	})
	sort.Strings(patrols)
	return list, patrols
}

// GetByID returns a member by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Member, error) {
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

// Update applies u to the member with id and returns the result.
func (r *Repository) Update(ctx context.Context, id string, u Update) (*models.Member, error) {
	var out models.Member
	err := r.store.Write(func(d *store.Data) error {
		m, err := d.Member(id)
		if err != nil {
			return err
		}
		if u.Patrol != nil && *u.Patrol != "" && !contains(d.Troop.Patrols, *u.Patrol) {
			return fmt.Errorf("%q: %w", *u.Patrol, ErrUnknownPatrol)
		}
		if u.Rank != nil && *u.Rank != "" && !contains(d.Troop.Ranks, *u.Rank) {
			return fmt.Errorf("%q: %w", *u.Rank, ErrUnknownRank)
		}
		if u.Rank != nil {
			m.Rank = *u.Rank
		}
		if u.Patrol != nil {
			m.Patrol = *u.Patrol
		}
		if u.Phone != nil {
			m.Phone = *u.Phone
		}
		if u.Address != nil {
			m.Address = *u.Address
		}
		if u.MedicalStatus != nil {
			m.MedicalStatus = *u.MedicalStatus
		}
		out = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
