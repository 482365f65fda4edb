package models

// DocumentType classifies vault documents.
type DocumentType string

const (
	DocumentMedical    DocumentType = "medical"
	DocumentPermission DocumentType = "permission"
	DocumentWaiver     DocumentType = "waiver"
	DocumentPolicy     DocumentType = "policy"
	DocumentNewsletter DocumentType = "newsletter"
)

// DocumentStatus is the review state of a document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// RequiredFor says which members must sign a document.
type RequiredFor string

const (
	RequiredAllScouts RequiredFor = "all_scouts"
	RequiredTrip      RequiredFor = "trip"
	RequiredOptional  RequiredFor = "optional"
)

// SubmissionSubmitted is the only state a signed submission has until review.
const SubmissionSubmitted = "submitted"

// Document is a file stored in the document vault.
type Document struct {
	ID             string         `json:"id" yaml:"id" validate:"required"`
	Name           string         `json:"name" yaml:"name"`
	Type           DocumentType   `json:"type" yaml:"type"`
	URL            string         `json:"url" yaml:"url"`
	UploadDate     string         `json:"upload_date" yaml:"upload_date"`
	UploadedBy     string         `json:"uploaded_by" yaml:"uploaded_by"`
	Status         DocumentStatus `json:"status" yaml:"status"`
	ExpirationDate string         `json:"expiration_date,omitempty" yaml:"expiration_date"`
	AssociatedTrip string         `json:"associated_trip,omitempty" yaml:"associated_trip"`
	ReviewedBy     string         `json:"reviewed_by,omitempty" yaml:"reviewed_by"`
	Description    string         `json:"description,omitempty" yaml:"description"`
	RequiredFor    RequiredFor    `json:"required_for" yaml:"required_for" validate:"omitempty,oneof=all_scouts trip optional"`
}

// RequiredOf reports whether memberID must sign d. trip is the associated trip, if any.
func (d *Document) RequiredOf(memberID string, trip *Trip) bool {
	switch d.RequiredFor {
	case RequiredAllScouts:
		return true
	case RequiredTrip:
		return trip != nil && trip.ID == d.AssociatedTrip && trip.HasAttendee(memberID)
	}
	return false
}

// DocumentSubmission is one signed copy of a document, submitted on behalf of a member.
type DocumentSubmission struct {
	ID              string `json:"id" yaml:"id" validate:"required"`
	DocumentID      string `json:"document_id" yaml:"document_id" validate:"required"`
	SubmittedBy     string `json:"submitted_by" yaml:"submitted_by"`
	SubmittedFor    string `json:"submitted_for" yaml:"submitted_for" validate:"required"`
	SignedDate      string `json:"signed_date" yaml:"signed_date"`
	SignatureDigest string `json:"signature_digest,omitempty" yaml:"signature_digest"`
	Status          string `json:"status" yaml:"status"`
}
