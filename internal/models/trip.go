package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of calendar dates stored on fixtures.
const DateLayout = "2006-01-02"

// TripStatus is the booking status of a trip.
type TripStatus string

const (
	TripPlanning  TripStatus = "planning"
	TripOpen      TripStatus = "open"
	TripClosed    TripStatus = "closed"
	TripCompleted TripStatus = "completed"
)

// Timeline values derived from trip dates.
const (
	TimelineCompleted = "completed"
	TimelineActive    = "active"
	TimelineUpcoming  = "upcoming"
	TimelinePlanning  = "planning"
)

// PermissionSlip is a per-trip consent record for one member.
type PermissionSlip struct {
	MemberID        string `json:"member_id" yaml:"member_id" validate:"required"`
	Signed          bool   `json:"signed" yaml:"signed"`
	SignedDate      string `json:"signed_date,omitempty" yaml:"signed_date"`
	SignedBy        string `json:"signed_by,omitempty" yaml:"signed_by"`
	SignatureDigest string `json:"signature_digest,omitempty" yaml:"signature_digest"`
}

// Trip is a troop outing.
type Trip struct {
	ID              string           `json:"id" yaml:"id" validate:"required"`
	Name            string           `json:"name" yaml:"name" validate:"required"`
	Destination     string           `json:"destination" yaml:"destination"`
	StartDate       string           `json:"start_date" yaml:"start_date"`
	EndDate         string           `json:"end_date" yaml:"end_date"`
	Cost            decimal.Decimal  `json:"cost" yaml:"cost"`
	ImageURL        string           `json:"image_url" yaml:"image_url"`
	Description     string           `json:"description" yaml:"description"`
	Requirements    []string         `json:"requirements" yaml:"requirements"`
	Attendees       []string         `json:"attendees" yaml:"attendees"`
	MaxParticipants int              `json:"max_participants,omitempty" yaml:"max_participants"`
	Status          TripStatus       `json:"status" yaml:"status"`
	PermissionSlips []PermissionSlip `json:"permission_slips,omitempty" yaml:"permission_slips" validate:"dive"`
}

// Timeline derives completed/active/upcoming from the trip dates relative to now.
// Trips with unparseable dates are reported as planning.
func (t *Trip) Timeline(now time.Time) string {
	start, err := time.Parse(DateLayout, t.StartDate)
	if err != nil {
		return TimelinePlanning
	}
	end, err := time.Parse(DateLayout, t.EndDate)
	if err != nil {
		return TimelinePlanning
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	switch {
	case end.Before(today):
		return TimelineCompleted
	case !start.After(today) && !end.Before(today):
		return TimelineActive
	case start.After(today):
		return TimelineUpcoming
	}
	return TimelinePlanning
}

// SlipTally returns how many permission slips are signed out of the total.
func (t *Trip) SlipTally() (signed, total int) {
	for _, s := range t.PermissionSlips {
		if s.Signed {
			signed++
		}
	}
	return signed, len(t.PermissionSlips)
}

// HasAttendee reports whether memberID is on the trip.
func (t *Trip) HasAttendee(memberID string) bool {
	for _, a := range t.Attendees {
		if a == memberID {
			return true
		}
	}
	return false
}

// Clone returns a copy of t that shares no slices with it.
func (t *Trip) Clone() Trip {
	out := *t
	out.Requirements = append([]string(nil), t.Requirements...)
	out.Attendees = append([]string(nil), t.Attendees...)
	out.PermissionSlips = append([]PermissionSlip(nil), t.PermissionSlips...)
	return out
}
