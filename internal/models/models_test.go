package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneSharesNoSlices(t *testing.T) {
	trip := &Trip{ID: "1", Attendees: []string{"2", "6"}, PermissionSlips: []PermissionSlip{{MemberID: "6"}}}
	tc := trip.Clone()
	tc.Attendees[0] = "9"
	tc.PermissionSlips[0].Signed = true
	assert.Equal(t, "2", trip.Attendees[0])
	assert.False(t, trip.PermissionSlips[0].Signed)

	photo := &Photo{ID: "1", AITags: []string{"camping"}, VerifiedTags: []string{"camping"}}
	pc := photo.Clone()
	pc.AITags[0] = "snow"
	pc.VerifiedTags = append(pc.VerifiedTags, "snow")
	assert.Equal(t, []string{"camping"}, photo.AITags)
	assert.Equal(t, []string{"camping"}, photo.VerifiedTags)

	blast := &BlastMessage{ID: "1", ReadBy: []string{"5"}}
	bc := blast.Clone()
	bc.ReadBy[0] = "6"
	assert.True(t, blast.MarkRead("6"))
	assert.Equal(t, []string{"5", "6"}, blast.ReadBy)
	assert.Equal(t, []string{"6"}, bc.ReadBy)
}

func TestDocumentRequiredFor(t *testing.T) {
	trip := &Trip{ID: "1", Attendees: []string{"2", "6"}}
	all := Document{RequiredFor: RequiredAllScouts}
	slip := Document{RequiredFor: RequiredTrip, AssociatedTrip: "1"}
	optional := Document{RequiredFor: RequiredOptional}

	assert.True(t, all.RequiredOf("8", nil))
	assert.True(t, slip.RequiredOf("6", trip))
	assert.False(t, slip.RequiredOf("8", trip))
	assert.False(t, slip.RequiredOf("6", nil))
	assert.False(t, optional.RequiredOf("6", trip))
}
