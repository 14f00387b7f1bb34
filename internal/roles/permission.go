package roles

import (
	"time"

	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// PermissionService answers allow/deny questions for a user's active role.
// A delegated role past its end date no longer confers authority even if the
// row has not been revoked yet.
type PermissionService struct {
	roles *store.RoleStore
}

func NewPermissionService(roles *store.RoleStore) *PermissionService {
	return &PermissionService{roles: roles}
}

// PermissionCheckResult is the structured answer to a permission question,
// so callers can show the amount ceiling and approval requirement even when
// the action is allowed.
type PermissionCheckResult struct {
	IsAllowed        bool     `json:"is_allowed"`
	AmountLimit      *float64 `json:"amount_limit,omitempty"`
	RequiresApproval bool     `json:"requires_approval"`
}

func (s *PermissionService) effectiveRole(userID string, householdID int64) (*model.HouseholdRole, error) {
	role, err := s.roles.GetActiveRole(userID, householdID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, nil
	}
	if role.IsDelegated && role.DelegationEndDate != nil && !role.DelegationEndDate.After(time.Now().UTC()) {
		return nil, nil
	}
	return role, nil
}

// HasPermission reports whether the user's role allows the permission key.
func (s *PermissionService) HasPermission(userID string, householdID int64, permissionKey string) (bool, error) {
	role, err := s.effectiveRole(userID, householdID)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, nil
	}
	return LookupPolicy(role.RoleType, permissionKey).Allowed, nil
}

// CanPerformAction reports whether the user may perform the action for the
// given amount, applying the role's amount ceiling if it has one.
func (s *PermissionService) CanPerformAction(userID string, householdID int64, action string, amount float64) (bool, error) {
	role, err := s.effectiveRole(userID, householdID)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, nil
	}
	policy := LookupPolicy(role.RoleType, action)
	if !policy.Allowed {
		return false, nil
	}
	if policy.AmountLimit != nil && amount > *policy.AmountLimit {
		return false, nil
	}
	return true, nil
}

// CheckPermission returns the full policy decision for the action.
func (s *PermissionService) CheckPermission(userID string, householdID int64, action string) (*PermissionCheckResult, error) {
	role, err := s.effectiveRole(userID, householdID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return &PermissionCheckResult{}, nil
	}
	policy := LookupPolicy(role.RoleType, action)
	return &PermissionCheckResult{
		IsAllowed:        policy.Allowed,
		AmountLimit:      policy.AmountLimit,
		RequiresApproval: policy.RequiresApproval,
	}, nil
}
