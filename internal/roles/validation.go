package roles

import (
	"fmt"

	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// Validator runs the same rules as the mutating operations but reports
// problems instead of raising them, so UI flows can pre-check a proposed
// change without side effects.
type Validator struct {
	roles   *store.RoleStore
	members *store.MemberStore
}

func NewValidator(roles *store.RoleStore, members *store.MemberStore) *Validator {
	return &Validator{roles: roles, members: members}
}

// ValidationResult reports blocking errors and informational warnings for a
// proposed operation. Warnings never block.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateRoleAssignment pre-checks a proposed role assignment.
func (v *Validator) ValidateRoleAssignment(assignerUserID string, householdID, targetMemberID int64, newRoleType model.RoleType) (*ValidationResult, error) {
	res := &ValidationResult{}

	if !newRoleType.Valid() {
		res.Errors = append(res.Errors, fmt.Sprintf("Unknown role type %q", newRoleType))
	}

	isAdmin, err := v.roles.HasRole(assignerUserID, householdID, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		res.Errors = append(res.Errors, "Only Admin can assign roles")
	}

	member, err := v.members.GetByID(targetMemberID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.HouseholdID != householdID {
		res.Errors = append(res.Errors, "Target member not found in household")
	} else {
		current, err := v.roles.GetActiveRoleByMember(member.ID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.RoleType == model.RoleAdmin && newRoleType != model.RoleAdmin {
			res.Warnings = append(res.Warnings, "Assignment will replace the existing admin")
		}
		if newRoleType == model.RoleChild && member.DateOfBirth == nil {
			res.Errors = append(res.Errors, "Date of birth required for Child role")
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res, nil
}

// ValidateHouseholdRoles reports whether the household has exactly one
// active admin. Run after bulk operations or migrations as a consistency
// check; the mutating operations keep the invariant themselves.
func (v *Validator) ValidateHouseholdRoles(householdID int64) (bool, error) {
	count, err := v.roles.CountActive(householdID, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}
