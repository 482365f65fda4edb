package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/utils"
)

var (
	ErrAlreadyReviewed = errors.New("document already reviewed")
	ErrAlreadySigned   = errors.New("document already signed for this member")
	ErrNotRequired     = errors.New("document is not required for this member")
	ErrNotApproved     = errors.New("document is not approved for signing")
)

// Upload describes a new vault document. Only metadata is stored.
type Upload struct {
	Name           string
	Type           models.DocumentType
	Description    string
	RequiredFor    models.RequiredFor
	AssociatedTrip string
	UploadedBy     string
	At             time.Time
}

// Signature is a completed document signature.
type Signature struct {
	SubmittedBy string
	Artifact    string
	At          time.Time
}

// ChildStatus is whether one child has a signed copy of a document.
type ChildStatus struct {
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	Signed     bool   `json:"signed"`
	SignedDate string `json:"signed_date,omitempty"`
}

// RequiredDocument is a document a parent must sign, with per-child progress.
type RequiredDocument struct {
	models.Document
	Children []ChildStatus `json:"children"`
}

// Filter narrows a document listing.
type Filter struct {
	Type   models.DocumentType
	Status models.DocumentStatus
	// Restricted keeps only approved documents and those uploaded by Uploader.
	Restricted bool
	Uploader   string
}

// TripSubmissions tallies permission slips for one trip.
type TripSubmissions struct {
	TripID      string   `json:"trip_id"`
	TripName    string   `json:"trip_name"`
	Signed      int      `json:"signed"`
	Total       int      `json:"total"`
	Outstanding []string `json:"outstanding"`
}

// Repository reads and reviews vault documents.
type Repository struct {
	store *store.Store
}

// NewRepository creates a documents repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// List returns the documents matching f.
func (r *Repository) List(ctx context.Context, f Filter) []models.Document {
	var out []models.Document
	r.store.Read(func(d *store.Data) {
		for _, doc := range d.Documents {
			if f.Type != "" && doc.Type != f.Type {
				continue
			}
			if f.Status != "" && doc.Status != f.Status {
				continue
			}
			if f.Restricted && doc.Status != models.DocumentApproved && (f.Uploader == "" || doc.UploadedBy != f.Uploader) {
				continue
			}
			out = append(out, doc)
		}
	})
	return out
}

// Review moves a pending document to status and records the reviewer.
func (r *Repository) Review(ctx context.Context, id string, status models.DocumentStatus, reviewer string) (*models.Document, error) {
	var out models.Document
	err := r.store.Write(func(d *store.Data) error {
		doc, err := d.Document(id)
		if err != nil {
			return err
		}
		if doc.Status != models.DocumentPending {
			return fmt.Errorf("document %s is %s: %w", id, doc.Status, ErrAlreadyReviewed)
		}
		doc.Status = status
		doc.ReviewedBy = reviewer
		out = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Submissions returns permission slip progress for every trip that tracks slips.
func (r *Repository) Submissions(ctx context.Context) []TripSubmissions {
	var out []TripSubmissions
	r.store.Read(func(d *store.Data) {
		for _, t := range d.Trips {
			if len(t.PermissionSlips) == 0 {
				continue
			}
			signed, total := t.SlipTally()
			ts := TripSubmissions{TripID: t.ID, TripName: t.Name, Signed: signed, Total: total, Outstanding: []string{}}
			for _, s := range t.PermissionSlips {
				if s.Signed {
					continue
				}
				name := s.MemberID
				if m, err := d.Member(s.MemberID); err == nil {
					name = m.Name
				}
				ts.Outstanding = append(ts.Outstanding, name)
			}
			out = append(out, ts)
		}
	})
	return out
}

// Create stores an uploaded document as pending review.
func (r *Repository) Create(ctx context.Context, u Upload) (*models.Document, error) {
	doc := models.Document{
		ID:             uuid.New().String(),
		Name:           u.Name,
		Type:           u.Type,
		Description:    u.Description,
		UploadDate:     u.At.Format(models.DateLayout),
		UploadedBy:     u.UploadedBy,
		Status:         models.DocumentPending,
		AssociatedTrip: u.AssociatedTrip,
		RequiredFor:    u.RequiredFor,
	}
	if doc.RequiredFor == "" {
		doc.RequiredFor = models.RequiredOptional
	}
	err := r.store.Write(func(d *store.Data) error {
		if doc.AssociatedTrip != "" {
			if _, err := d.Trip(doc.AssociatedTrip); err != nil {
				return err
			}
		}
		d.Documents = append([]models.Document{doc}, d.Documents...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Required returns the approved documents at least one of parent's children must sign, in
// vault order.
func (r *Repository) Required(ctx context.Context, parent models.Member) []RequiredDocument {
	var out []RequiredDocument
	r.store.Read(func(d *store.Data) {
		for _, doc := range d.Documents {
			if doc.Status != models.DocumentApproved {
				continue
			}
			var trip *models.Trip
			if doc.AssociatedTrip != "" {
				trip, _ = d.Trip(doc.AssociatedTrip)
			}
			rd := RequiredDocument{Document: doc}
			for _, childID := range parent.Children {
				if !doc.RequiredOf(childID, trip) {
					continue
				}
				cs := ChildStatus{MemberID: childID, Name: childID}
				if m, err := d.Member(childID); err == nil {
					cs.Name = m.Name
				}
				if sub, err := d.Submission(doc.ID, childID); err == nil {
					cs.Signed = true
					cs.SignedDate = sub.SignedDate
				}
				rd.Children = append(rd.Children, cs)
			}
			if len(rd.Children) > 0 {
				out = append(out, rd)
			}
		}
	})
	return out
}

// Sign records a signed copy of documentID for memberID. Only the digest of the artifact is kept.
func (r *Repository) Sign(ctx context.Context, documentID, memberID string, sig Signature) (*models.DocumentSubmission, error) {
	var out models.DocumentSubmission
	err := r.store.Write(func(d *store.Data) error {
		doc, err := d.Document(documentID)
		if err != nil {
			return err
		}
		if doc.Status != models.DocumentApproved {
			return fmt.Errorf("document %s is %s: %w", documentID, doc.Status, ErrNotApproved)
		}
		if doc.RequiredFor == models.RequiredTrip {
			trip, _ := d.Trip(doc.AssociatedTrip)
			if !doc.RequiredOf(memberID, trip) {
				return fmt.Errorf("document %s member %s: %w", documentID, memberID, ErrNotRequired)
			}
		}
		if _, err := d.Submission(documentID, memberID); err == nil {
			return fmt.Errorf("document %s member %s: %w", documentID, memberID, ErrAlreadySigned)
		}
		out = models.DocumentSubmission{
			ID:              uuid.New().String(),
			DocumentID:      documentID,
			SubmittedBy:     sig.SubmittedBy,
			SubmittedFor:    memberID,
			SignedDate:      sig.At.Format(models.DateLayout),
			SignatureDigest: utils.SignatureDigest(sig.Artifact),
			Status:          models.SubmissionSubmitted,
		}
		d.Submissions = append(d.Submissions, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Member returns a member by id.
func (r *Repository) Member(ctx context.Context, id string) (*models.Member, error) {
	var out models.Member
	var err error
	r.store.Read(func(d *store.Data) {
		var m *models.Member
		if m, err = d.Member(id); err == nil {
			out = *m
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
