// Package policy decides which member fields a viewer may see and which actions a viewer may take.
//
// Every decision is a pure function of the viewer's role and patrol and, for patrol-scoped rules,
// the target's patrol. Roles missing from a capability set fall back to the guest result.
package policy

import (
	"github.com/troop78/troophub/internal/models"
)

// PolicyVersion identifies the capability table below. Bump it when a set changes.
const PolicyVersion = 1

// Placeholders rendered in place of hidden contact fields.
const (
	MaskedPhone   = "***-***-****"
	MaskedAddress = "Address hidden"
)

// Capability names one permission in the table.
type Capability string

const (
	ViewPhone              Capability = "view_phone"
	ViewAddress            Capability = "view_address"
	ViewMedicalStatus      Capability = "view_medical_status"
	SendBroadcast          Capability = "send_broadcast"
	SendEmergencyBroadcast Capability = "send_emergency_broadcast"
	ApproveDocument        Capability = "approve_document"
	EditRoster             Capability = "edit_roster"
	AccessRoster           Capability = "access_roster"
	CurateArchive          Capability = "curate_archive"
	RunArchiveSync         Capability = "run_archive_sync"
	ViewAllSubmissions     Capability = "view_all_submissions"
)

// AllCapabilities lists every capability in display order.
var AllCapabilities = []Capability{
	ViewPhone,
	ViewAddress,
	ViewMedicalStatus,
	SendBroadcast,
	SendEmergencyBroadcast,
	ApproveDocument,
	EditRoster,
	AccessRoster,
	CurateArchive,
	RunArchiveSync,
	ViewAllSubmissions,
}

type roleSet map[models.Role]struct{}

func setOf(roles ...models.Role) roleSet {
	s := make(roleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// capabilities is the whole policy. ViewPhone lists only the unconditional holders;
// patrol leaders get it per target via CanViewPhone.
var capabilities = map[Capability]roleSet{
	ViewPhone:              setOf(models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL, models.RoleASPL),
	ViewAddress:            setOf(models.RoleAdmin, models.RoleScoutmaster),
	ViewMedicalStatus:      setOf(models.RoleAdmin, models.RoleScoutmaster),
	SendBroadcast:          setOf(models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL),
	SendEmergencyBroadcast: setOf(models.RoleAdmin, models.RoleScoutmaster),
	ApproveDocument:        setOf(models.RoleAdmin, models.RoleScoutmaster),
	EditRoster:             setOf(models.RoleAdmin, models.RoleScoutmaster),
	AccessRoster:           setOf(models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL, models.RoleASPL, models.RolePatrolLeader),
	CurateArchive:          setOf(models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL, models.RoleASPL),
	RunArchiveSync:         setOf(models.RoleAdmin, models.RoleScoutmaster),
	ViewAllSubmissions:     setOf(models.RoleAdmin, models.RoleScoutmaster, models.RoleSPL),
}

// Has reports whether role holds capability c unconditionally.
func Has(role models.Role, c Capability) bool {
	set, ok := capabilities[c]
	if !ok {
		return false
	}
	if !role.Valid() {
		role = models.RoleGuest
	}
	_, ok = set[role]
	return ok
}

// HoldersOf returns the roles holding c unconditionally, in models.Roles order.
func HoldersOf(c Capability) []models.Role {
	var out []models.Role
	for _, r := range models.Roles {
		if Has(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// CanViewPhone reports whether a viewer with role and viewerGroup may see the phone number of a
// member in targetGroup. Patrol leaders see phones only inside their own (non-empty) patrol.
func CanViewPhone(role models.Role, targetGroup, viewerGroup string) bool {
	if Has(role, ViewPhone) {
		return true
	}
	if role == models.RolePatrolLeader {
		return targetGroup != "" && targetGroup == viewerGroup
	}
	return false
}

func CanViewAddress(role models.Role) bool { return Has(role, ViewAddress) }

func CanViewMedicalStatus(role models.Role) bool { return Has(role, ViewMedicalStatus) }

func CanSendBroadcast(role models.Role) bool { return Has(role, SendBroadcast) }

// CanSendEmergencyBroadcast is strictly narrower than CanSendBroadcast.
func CanSendEmergencyBroadcast(role models.Role) bool { return Has(role, SendEmergencyBroadcast) }

func CanApproveDocument(role models.Role) bool { return Has(role, ApproveDocument) }

func CanEditRoster(role models.Role) bool { return Has(role, EditRoster) }

func CanAccessRoster(role models.Role) bool { return Has(role, AccessRoster) }

func CanCurateArchive(role models.Role) bool { return Has(role, CurateArchive) }

func CanRunArchiveSync(role models.Role) bool { return Has(role, RunArchiveSync) }

func CanViewAllSubmissions(role models.Role) bool { return Has(role, ViewAllSubmissions) }

// MaskPhone returns the phone placeholder. The input is ignored.
func MaskPhone(string) string { return MaskedPhone }

// MaskAddress returns the address placeholder. The input is ignored.
func MaskAddress(string) string { return MaskedAddress }
