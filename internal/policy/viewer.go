package policy

import (
	"github.com/troop78/troophub/internal/models"
)

// Viewer is the context a request is evaluated in.
type Viewer struct {
	MemberID string      `json:"member_id,omitempty"`
	Name     string      `json:"name,omitempty"`
	Role     models.Role `json:"role"`
	Patrol   string      `json:"patrol,omitempty"`
}

// Guest is the anonymous viewer.
var Guest = Viewer{Role: models.RoleGuest}

// ViewerFor builds the viewer context of a member.
func ViewerFor(m models.Member) Viewer {
	return Viewer{MemberID: m.ID, Name: m.Name, Role: models.ParseRole(string(m.Role)), Patrol: m.Patrol}
}

// Summary lists what a viewer may see and do.
type Summary struct {
	Version                int         `json:"version"`
	Role                   models.Role `json:"role"`
	RoleLabel              string      `json:"role_label"`
	PhoneNumbers           string      `json:"phone_numbers"`
	Addresses              bool        `json:"addresses"`
	MedicalStatus          bool        `json:"medical_status"`
	SendBroadcast          bool        `json:"send_broadcast"`
	SendEmergencyBroadcast bool        `json:"send_emergency_broadcast"`
	ApproveDocuments       bool        `json:"approve_documents"`
	EditRoster             bool        `json:"edit_roster"`
	AccessRoster           bool        `json:"access_roster"`
	CurateArchive          bool        `json:"curate_archive"`
	RunArchiveSync         bool        `json:"run_archive_sync"`
}

// Phone visibility values on Summary.
const (
	PhoneVisible = "visible"
	PhonePatrol  = "patrol"
	PhoneMasked  = "masked"
)

// Capabilities summarizes the viewer's permissions for privacy badges.
func Capabilities(v Viewer) Summary {
	phones := PhoneMasked
	switch {
	case Has(v.Role, ViewPhone):
		phones = PhoneVisible
	case v.Role == models.RolePatrolLeader && v.Patrol != "":
		phones = PhonePatrol
	}
	role := v.Role
	if !role.Valid() {
		role = models.RoleGuest
	}
	return Summary{
		Version:                PolicyVersion,
		Role:                   role,
		RoleLabel:              role.Label(),
		PhoneNumbers:           phones,
		Addresses:              CanViewAddress(v.Role),
		MedicalStatus:          CanViewMedicalStatus(v.Role),
		SendBroadcast:          CanSendBroadcast(v.Role),
		SendEmergencyBroadcast: CanSendEmergencyBroadcast(v.Role),
		ApproveDocuments:       CanApproveDocument(v.Role),
		EditRoster:             CanEditRoster(v.Role),
		AccessRoster:           CanAccessRoster(v.Role),
		CurateArchive:          CanCurateArchive(v.Role),
		RunArchiveSync:         CanRunArchiveSync(v.Role),
	}
}

// Project renders m for v, masking the fields v may not see.
func Project(v Viewer, m models.Member) models.MemberView {
	out := models.MemberView{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Role:          m.Role,
		RoleLabel:     m.Role.Label(),
		Rank:          m.Rank,
		Patrol:        m.Patrol,
		Phone:         m.Phone,
		Address:       m.Address,
		MedicalStatus: m.MedicalStatus,
		JoinDate:      m.JoinDate,
		EagleDate:     m.EagleDate,
	}
	if !CanViewPhone(v.Role, m.Patrol, v.Patrol) {
		out.Phone = MaskPhone(m.Phone)
		out.PhoneMasked = true
	}
	if !CanViewAddress(v.Role) {
		out.Address = MaskAddress(m.Address)
		out.AddressMasked = true
	}
	if !CanViewMedicalStatus(v.Role) {
		out.MedicalStatus = models.MedicalHidden
	}
	return out
}

// Scope limits which members a roster view includes.
type Scope struct {
	All    bool
	Patrol string
}

// Includes reports whether m falls inside the scope.
func (s Scope) Includes(m models.Member) bool {
	return s.All || (s.Patrol != "" && m.Patrol == s.Patrol)
}

// RosterScope returns the part of the roster v may open. Patrol leaders are limited to their own
// patrol. ok is false when the viewer may not open the roster at all.
func RosterScope(v Viewer) (scope Scope, ok bool) {
	if !CanAccessRoster(v.Role) {
		return Scope{}, false
	}
	if v.Role == models.RolePatrolLeader {
		return Scope{Patrol: v.Patrol}, true
	}
	return Scope{All: true}, true
}

// CanSignFor reports whether v may sign a permission slip on behalf of member.
func CanSignFor(v Viewer, member models.Member, viewerMember *models.Member) bool {
	switch {
	case !v.Role.Valid() || v.Role == models.RoleGuest:
		return false
	case v.Role == models.RoleAdmin || v.Role == models.RoleScoutmaster:
		return true
	case v.MemberID != "" && v.MemberID == member.ID:
		return true
	case v.Role == models.RoleParent && viewerMember != nil && viewerMember.ID == v.MemberID:
		return viewerMember.HasChild(member.ID)
	}
	return false
}
