package newsletters

import (
	"context"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

// Repository reads the newsletter archive.
type Repository struct {
	store *store.Store
}

// NewRepository creates a newsletters repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Search returns newsletters whose title, excerpt or OCR text contains query, ignoring case.
// An empty query returns the whole archive.
func (r *Repository) Search(ctx context.Context, query string) []models.Newsletter {
	var out []models.Newsletter
	r.store.Read(func(d *store.Data) {
		for _, n := range d.Newsletters {
			if utils.AnyContainsFold([]string{n.Title, n.Excerpt, n.SearchableContent}, query) {
				out = append(out, n)
			}
		}
	})
	return out
}
