package models

import "time"

// Recipient tokens accepted on a blast besides plain member ids.
const (
	RecipientAll       = "all"
	RecipientAllScouts = "all_scouts"
	RecipientParents   = "parents"
	RecipientLeaders   = "leaders"
	// RecipientPatrolPrefix addresses a whole patrol, e.g. "patrol:Eagles".
	RecipientPatrolPrefix = "patrol:"
)

// Default blast titles used when the sender leaves the title empty.
const (
	DefaultEmergencyTitle = "EMERGENCY ALERT"
	DefaultBlastTitle     = "Troop Announcement"
)

// BlastMessage is an outbound announcement.
type BlastMessage struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	Sender      string    `json:"sender" yaml:"sender"`
	Recipients  []string  `json:"recipients" yaml:"recipients"`
	Channels    []Channel `json:"channels" yaml:"channels" validate:"dive,blast_channel"`
	IsEmergency bool      `json:"is_emergency" yaml:"is_emergency"`
	SentDate    time.Time `json:"sent_date" yaml:"sent_date"`
	ReadBy      []string  `json:"read_by" yaml:"read_by"`
}

// MarkRead records memberID as having read the blast. It returns false if already recorded.
func (b *BlastMessage) MarkRead(memberID string) bool {
	for _, id := range b.ReadBy {
		if id == memberID {
			return false
		}
	}
	b.ReadBy = append(b.ReadBy, memberID)
	return true
}

// Clone returns a copy of b that shares no slices with it.
func (b *BlastMessage) Clone() BlastMessage {
	out := *b
	out.Recipients = append([]string(nil), b.Recipients...)
	out.Channels = append([]Channel(nil), b.Channels...)
	out.ReadBy = append([]string(nil), b.ReadBy...)
	return out
}
