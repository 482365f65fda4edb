package blasts

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
)

var (
	// ErrBroadcastNotPermitted is returned when the viewer may not send blasts at all.
	ErrBroadcastNotPermitted = errors.New("broadcast not permitted")
	// ErrEmergencyNotPermitted is returned when the viewer may send blasts but not emergency ones.
	ErrEmergencyNotPermitted = errors.New("emergency broadcast not permitted")
	// ErrEmptyBody is returned for a blast without content.
	ErrEmptyBody = errors.New("message body is required")
	// ErrNoChannels is returned for a blast without a delivery channel.
	ErrNoChannels = errors.New("at least one channel is required")
)

// SendRequest is the body of POST /blasts.
type SendRequest struct {
	Title       string   `json:"title" binding:"max=120"`
	Body        string   `json:"body" binding:"required,max=2000"`
	Recipients  []string `json:"recipients"`
	Channels    []string `json:"channels" binding:"required,min=1,dive,blast_channel"`
	IsEmergency bool     `json:"is_emergency"`
}

// Compose turns a request into a blast sent by v at now. Emergency blasts always go to
// everyone.
func Compose(v policy.Viewer, req SendRequest, now time.Time) (models.BlastMessage, error) {
	if !policy.CanSendBroadcast(v.Role) {
		return models.BlastMessage{}, ErrBroadcastNotPermitted
	}
	if req.IsEmergency && !policy.CanSendEmergencyBroadcast(v.Role) {
		return models.BlastMessage{}, ErrEmergencyNotPermitted
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return models.BlastMessage{}, ErrEmptyBody
	}
	channels := make([]models.Channel, 0, len(req.Channels))
	seen := make(map[models.Channel]bool)
	for _, c := range req.Channels {
		ch := models.Channel(c)
		if !ch.Valid() || seen[ch] {
			continue
		}
		seen[ch] = true
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return models.BlastMessage{}, ErrNoChannels
	}

	recipients := compact(req.Recipients)
	if len(recipients) == 0 {
		recipients = []string{models.RecipientAllScouts}
	}
	title := strings.TrimSpace(req.Title)
	if req.IsEmergency {
		recipients = []string{models.RecipientAll}
		if title == "" {
			title = models.DefaultEmergencyTitle
		}
	} else if title == "" {
		title = models.DefaultBlastTitle
	}

	sender := v.MemberID
	if sender == "" {
		sender = string(v.Role)
	}
	return models.BlastMessage{
		ID:          uuid.New().String(),
		Title:       title,
		Content:     body,
		Sender:      sender,
		Recipients:  recipients,
		Channels:    channels,
		IsEmergency: req.IsEmergency,
		SentDate:    now.UTC(),
		ReadBy:      []string{},
	}, nil
}

func compact(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
