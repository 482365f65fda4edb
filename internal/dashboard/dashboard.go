// Package dashboard assembles the troop home page.
package dashboard

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/photos"
	"github.com/troop78/troophub/internal/store"
)

// OpenTripsShown caps the trips listed on the dashboard.
const OpenTripsShown = 3

// Stats are the headline counters.
type Stats struct {
	ActiveScouts int `json:"active_scouts"`
	EagleScouts  int `json:"eagle_scouts"`
	OpenTrips    int `json:"open_trips"`
	Photos       int `json:"photos"`
}

// Memory is the photo of the day with the AI tags nobody has confirmed yet.
type Memory struct {
	models.Photo
	UnverifiedTags []string `json:"unverified_tags"`
}

// Dashboard is the body of GET /dashboard.
type Dashboard struct {
	Troop          string         `json:"troop"`
	Stats          Stats          `json:"stats"`
	OpenTrips      []models.Trip  `json:"open_trips"`
	MemoryOfTheDay *Memory        `json:"memory_of_the_day,omitempty"`
	Location       store.Location `json:"location"`
	NextMeetings   []time.Time    `json:"next_meetings"`
}

// Repository reads the dashboard data.
type Repository struct {
	store  *store.Store
	photos *photos.Repository
}

// NewRepository creates a dashboard repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s, photos: photos.NewRepository(s)}
}

// Build assembles the dashboard at now.
func (r *Repository) Build(ctx context.Context, now time.Time) Dashboard {
	out := Dashboard{OpenTrips: []models.Trip{}, NextMeetings: []time.Time{}}
	r.store.Read(func(d *store.Data) {
		out.Troop = d.Troop.Name
		out.Location = d.Troop.Location
		out.Stats.Photos = len(d.Photos)
		for _, m := range d.Members {
			if m.Role == models.RoleScout || m.Role == models.RolePatrolLeader {
				out.Stats.ActiveScouts++
			}
			if m.EagleDate != "" {
				out.Stats.EagleScouts++
			}
		}
		for _, t := range d.Trips {
			if t.Status != models.TripOpen {
				continue
			}
			out.Stats.OpenTrips++
			if len(out.OpenTrips) < OpenTripsShown {
				out.OpenTrips = append(out.OpenTrips, t.Clone())
			}
		}
	})
	if p, err := r.photos.MemoryOfTheDay(ctx, now); err == nil {
		out.MemoryOfTheDay = &Memory{Photo: *p, UnverifiedTags: unverified(*p)}
	}
	return out
}

func unverified(p models.Photo) []string {
	verified := make(map[string]bool, len(p.VerifiedTags))
	for _, t := range p.VerifiedTags {
		verified[t] = true
	}
	out := []string{}
	for _, t := range p.AITags {
		if !verified[t] {
			out = append(out, t)
		}
	}
	return out
}

// NextMeetings returns up to n occurrences of schedule strictly after now.
func NextMeetings(schedule *rrule.RRule, now time.Time, n int) []time.Time {
	out := []time.Time{}
	if schedule == nil {
		return out
	}
	t := now
	for len(out) < n {
		next := schedule.After(t, false)
		if next.IsZero() {
			break
		}
		out = append(out, next)
		t = next
	}
	return out
}
