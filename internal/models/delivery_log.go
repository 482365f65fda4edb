package models

import (
	"time"
)

// Channel is a blast delivery channel.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelApp   Channel = "app"
)

// Channels lists every supported channel.
var Channels = []Channel{ChannelSMS, ChannelEmail, ChannelApp}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelApp:
		return true
	}
	return false
}

// DeliveryStatus for a single recipient/channel delivery attempt.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusSimulated = "simulated"
	DeliveryStatusFailed    = "failed"
)

// DeliveryLog records one simulated delivery of a blast to one member on one channel.
type DeliveryLog struct {
	ID           string     `json:"id"`
	BlastID      string     `json:"blast_id"`
	MemberID     string     `json:"member_id"`
	Channel      Channel    `json:"channel"`
	Status       string     `json:"status"`
	AttemptedAt  *time.Time `json:"attempted_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
