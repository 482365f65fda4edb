package search

import (
	"context"
	"strings"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

// Results groups the hits of one query.
type Results struct {
	Query       string              `json:"query"`
	Members     []models.MemberView `json:"members"`
	Trips       []models.Trip       `json:"trips"`
	Photos      []models.Photo      `json:"photos"`
	Newsletters []models.Newsletter `json:"newsletters"`
	Total       int                 `json:"total"`
}

// Repository runs substring searches across the troop data.
type Repository struct {
	store *store.Store
}

// NewRepository creates a search repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Search matches query case-insensitively. Members are only searched for viewers with roster
// access and only youth within their roster scope match, projected for v. A blank query matches
// nothing.
func (r *Repository) Search(ctx context.Context, v policy.Viewer, query string) Results {
	q := strings.TrimSpace(query)
	res := Results{
		Query:       q,
		Members:     []models.MemberView{},
		Trips:       []models.Trip{},
		Photos:      []models.Photo{},
		Newsletters: []models.Newsletter{},
	}
	if q == "" {
		return res
	}
	scope, rosterOK := policy.RosterScope(v)

	r.store.Read(func(d *store.Data) {
		if rosterOK {
			for _, m := range d.Members {
				if m.Role.IsYouth() && scope.Includes(m) && utils.AnyContainsFold([]string{m.Name, m.Email, m.Rank}, q) {
					res.Members = append(res.Members, policy.Project(v, m))
				}
			}
		}
		for _, t := range d.Trips {
			if utils.AnyContainsFold([]string{t.Name, t.Destination, t.Description}, q) {
				res.Trips = append(res.Trips, t.Clone())
			}
		}
		for _, p := range d.Photos {
			fields := append([]string{p.Event, p.Location}, p.AITags...)
			fields = append(fields, p.VerifiedTags...)
			if utils.AnyContainsFold(fields, q) {
				res.Photos = append(res.Photos, p.Clone())
			}
		}
		for _, n := range d.Newsletters {
			if utils.AnyContainsFold([]string{n.Title, n.Excerpt, n.SearchableContent}, q) {
				res.Newsletters = append(res.Newsletters, n)
			}
		}
	})
	res.Total = len(res.Members) + len(res.Trips) + len(res.Photos) + len(res.Newsletters)
	return res
}
