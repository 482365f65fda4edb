// Package store holds the troop fixture data in memory.
package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/pkg/validation"
)

//go:embed fixtures.yaml
var embedded []byte

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Location is the troop meeting place.
type Location struct {
	Address string  `json:"address" yaml:"address"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	MapNote string  `json:"map_note" yaml:"map_note"`
}

// Troop is the troop-wide metadata.
type Troop struct {
	Name     string   `json:"name" yaml:"name"`
	Location Location `json:"location" yaml:"location"`
	Patrols  []string `json:"patrols" yaml:"patrols"`
	Ranks    []string `json:"ranks" yaml:"ranks"`
}

// Data is the full in-memory dataset.
type Data struct {
	Troop       Troop                       `yaml:"troop"`
	Members     []models.Member             `yaml:"members" validate:"dive"`
	Trips       []models.Trip               `yaml:"trips" validate:"dive"`
	Photos      []models.Photo              `yaml:"photos" validate:"dive"`
	Documents   []models.Document           `yaml:"documents" validate:"dive"`
	Submissions []models.DocumentSubmission `yaml:"submissions" validate:"dive"`
	Newsletters []models.Newsletter         `yaml:"newsletters" validate:"dive"`
	Blasts      []models.BlastMessage       `yaml:"blasts" validate:"dive"`
	Deliveries  []models.DeliveryLog        `yaml:"-"`
}

// Store guards a Data snapshot.
type Store struct {
	mu   sync.RWMutex
	data Data
}

// New wraps data in a Store.
func New(data Data) *Store {
	return &Store{data: data}
}

// Parse decodes a fixture document.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse fixtures: %w", err)
	}
	for i := range d.Members {
		d.Members[i].Role = models.ParseRole(string(d.Members[i].Role))
	}
	if err := validation.Struct(&d); err != nil {
		return Data{}, fmt.Errorf("validate fixtures: %w", err)
	}
	return d, nil
}

// LoadEmbedded returns a Store over the fixtures compiled into the binary.
func LoadEmbedded() (*Store, error) {
	d, err := Parse(embedded)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// Load reads fixtures from path, or the embedded set when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return LoadEmbedded()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// Read runs fn with shared access to the data. fn must not retain or mutate it.
func (s *Store) Read(fn func(d *Data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// Write runs fn with exclusive access to the data.
func (s *Store) Write(fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

// Member returns the member with id.
func (d *Data) Member(id string) (*models.Member, error) {
	for i := range d.Members {
		if d.Members[i].ID == id {
			return &d.Members[i], nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
}

// Trip returns the trip with id.
func (d *Data) Trip(id string) (*models.Trip, error) {
	for i := range d.Trips {
		if d.Trips[i].ID == id {
			return &d.Trips[i], nil
		}
	}
	return nil, fmt.Errorf("trip %s: %w", id, ErrNotFound)
}

// Photo returns the photo with id.
func (d *Data) Photo(id string) (*models.Photo, error) {
	for i := range d.Photos {
		if d.Photos[i].ID == id {
			return &d.Photos[i], nil
		}
	}
	return nil, fmt.Errorf("photo %s: %w", id, ErrNotFound)
}

// Document returns the document with id.
func (d *Data) Document(id string) (*models.Document, error) {
	for i := range d.Documents {
		if d.Documents[i].ID == id {
			return &d.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
}

// Submission returns the signed copy of documentID submitted for memberID.
func (d *Data) Submission(documentID, memberID string) (*models.DocumentSubmission, error) {
	for i := range d.Submissions {
		if d.Submissions[i].DocumentID == documentID && d.Submissions[i].SubmittedFor == memberID {
			return &d.Submissions[i], nil
		}
	}
	return nil, fmt.Errorf("document %s member %s submission: %w", documentID, memberID, ErrNotFound)
}

// Blast returns the blast with id.
func (d *Data) Blast(id string) (*models.BlastMessage, error) {
	for i := range d.Blasts {
		if d.Blasts[i].ID == id {
			return &d.Blasts[i], nil
		}
	}
	return nil, fmt.Errorf("blast %s: %w", id, ErrNotFound)
}

// MembersByRole returns the members holding role.
func (d *Data) MembersByRole(role models.Role) []models.Member {
	var out []models.Member
	for _, m := range d.Members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
