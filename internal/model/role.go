package model

import "time"

// RoleType is the closed set of household roles, ordered by privilege.
type RoleType string

const (
	RoleAdmin      RoleType = "admin"
	RoleFullAccess RoleType = "full_access"
	RoleEditor     RoleType = "editor"
	RoleViewOnly   RoleType = "view_only"
	RoleLimited    RoleType = "limited"
	RoleChild      RoleType = "child"
)

// roleRanks orders the hierarchy Admin > FullAccess > Editor > ViewOnly > Limited > Child.
var roleRanks = map[RoleType]int{
	RoleAdmin:      6,
	RoleFullAccess: 5,
	RoleEditor:     4,
	RoleViewOnly:   3,
	RoleLimited:    2,
	RoleChild:      1,
}

// Valid reports whether r is one of the six known role types.
func (r RoleType) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the privilege rank of the role; higher means more privileged.
// Unknown roles rank below everything.
func (r RoleType) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r is at least as privileged as other.
func (r RoleType) AtLeast(other RoleType) bool {
	return r.Rank() >= other.Rank()
}

// HouseholdRole is one row of a member's role history. Rows are never
// deleted: replacing a role deactivates the prior row and inserts a new one.
type HouseholdRole struct {
	ID                int64      `json:"id"`
	MemberID          int64      `json:"member_id"`
	HouseholdID       int64      `json:"household_id"`
	RoleType          RoleType   `json:"role_type"`
	AssignedAt        time.Time  `json:"assigned_at"`
	AssignedBy        string     `json:"assigned_by"`
	Active            bool       `json:"active"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	IsDelegated       bool       `json:"is_delegated"`
	DelegatedBy       *string    `json:"delegated_by,omitempty"`
	DelegationEndDate *time.Time `json:"delegation_end_date,omitempty"`
}
