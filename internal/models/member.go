package models

import "strings"

// Role represents a member's role in the troop.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleScoutmaster  Role = "scoutmaster"
	RoleSPL          Role = "spl"
	RoleASPL         Role = "aspl"
	RolePatrolLeader Role = "patrol_leader"
	RoleParent       Role = "parent"
	RoleScout        Role = "scout"
	RoleGuest        Role = "guest"
)

// Roles lists every known role, most privileged first.
var Roles = []Role{
	RoleAdmin,
	RoleScoutmaster,
	RoleSPL,
	RoleASPL,
	RolePatrolLeader,
	RoleParent,
	RoleScout,
	RoleGuest,
}

var roleLabels = map[Role]string{
	RoleAdmin:        "Administrator",
	RoleScoutmaster:  "Scoutmaster",
	RoleSPL:          "Senior Patrol Leader",
	RoleASPL:         "Assistant Senior Patrol Leader",
	RolePatrolLeader: "Patrol Leader",
	RoleParent:       "Parent",
	RoleScout:        "Scout",
	RoleGuest:        "Guest",
}

// ParseRole maps a wire value to a Role. Unknown values map to RoleGuest.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLabels[r]; ok {
		return r
	}
	return RoleGuest
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the display label of the role.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return roleLabels[RoleGuest]
}

// IsYouth reports whether the role belongs to a youth member listed on the roster.
func (r Role) IsYouth() bool {
	switch r {
	case RoleSPL, RoleASPL, RolePatrolLeader, RoleScout:
		return true
	}
	return false
}

// MedicalStatus is the readiness of a member's medical forms.
type MedicalStatus string

const (
	MedicalComplete MedicalStatus = "complete"
	MedicalPending  MedicalStatus = "pending"
	MedicalMissing  MedicalStatus = "missing"
	// MedicalHidden is rendered in place of the real status when the viewer may not see it.
	MedicalHidden MedicalStatus = "hidden"
)

// Member represents a troop member (youth, adult leader or parent).
type Member struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	Name          string        `json:"name" yaml:"name" validate:"required"`
	Email         string        `json:"email" yaml:"email"`
	Role          Role          `json:"role" yaml:"role"`
	Rank          string        `json:"rank,omitempty" yaml:"rank"`
	Patrol        string        `json:"patrol,omitempty" yaml:"patrol"`
	Phone         string        `json:"phone" yaml:"phone"`
	Address       string        `json:"address" yaml:"address"`
	MedicalStatus MedicalStatus `json:"medical_status,omitempty" yaml:"medical_status" validate:"omitempty,medical_status"`
	JoinDate      string        `json:"join_date,omitempty" yaml:"join_date"`
	EagleDate     string        `json:"eagle_date,omitempty" yaml:"eagle_date"`
	Children      []string      `json:"children,omitempty" yaml:"children"`
}

// MemberView is a Member as rendered for a particular viewer.
type MemberView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	RoleLabel     string        `json:"role_label"`
	Rank          string        `json:"rank,omitempty"`
	Patrol        string        `json:"patrol,omitempty"`
	Phone         string        `json:"phone"`
	PhoneMasked   bool          `json:"phone_masked"`
	Address       string        `json:"address"`
	AddressMasked bool          `json:"address_masked"`
	MedicalStatus MedicalStatus `json:"medical_status"`
	JoinDate      string        `json:"join_date,omitempty"`
	EagleDate     string        `json:"eagle_date,omitempty"`
}

// HasChild reports whether memberID is listed as a child of m.
func (m *Member) HasChild(memberID string) bool {
	for _, c := range m.Children {
		if c == memberID {
			return true
		}
	}
	return false
}
