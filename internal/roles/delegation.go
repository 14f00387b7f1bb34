package roles

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/hardbottle/internal/audit"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// DelegationService grants time-boxed roles on behalf of a grantor and
// revokes them early. Delegation depth is capped at one: a role that was
// itself delegated can never act as a grantor.
type DelegationService struct {
	roles   *store.RoleStore
	members *store.MemberStore
	audit   audit.Sink
	logger  *slog.Logger
}

func NewDelegationService(roles *store.RoleStore, members *store.MemberStore, sink audit.Sink, logger *slog.Logger) *DelegationService {
	return &DelegationService{roles: roles, members: members, audit: sink, logger: logger}
}

// Delegation is the outcome of a grant. RequiresApproval reports whether the
// hierarchy table demands sign-off for this (grantor, grantee) pair; the
// engine surfaces the flag but does not run an approval workflow.
type Delegation struct {
	Role             *model.HouseholdRole `json:"role"`
	RequiresApproval bool                 `json:"requires_approval"`
}

// DelegateRole grants roleType to granteeUserID until endDate, attributed to
// the grantor. The grantee's prior active role is deactivated and kept as
// history.
func (s *DelegationService) DelegateRole(grantorUserID, granteeUserID string, householdID int64, roleType model.RoleType, endDate time.Time) (*Delegation, error) {
	if !roleType.Valid() {
		return nil, fmt.Errorf("%w: unknown role type %q", ErrValidation, roleType)
	}

	grantorRole, err := s.roles.GetActiveRole(grantorUserID, householdID)
	if err != nil {
		return nil, err
	}
	if grantorRole == nil {
		return nil, fmt.Errorf("%w: grantor has no active role in household %d", ErrNotAuthorized, householdID)
	}
	if grantorRole.IsDelegated {
		return nil, fmt.Errorf("%w: a delegated role cannot be delegated further", ErrNotAuthorized)
	}
	if !CanDelegate(grantorRole.RoleType, roleType) {
		return nil, fmt.Errorf("%w: %s may not delegate %s", ErrNotAuthorized, grantorRole.RoleType, roleType)
	}

	now := time.Now().UTC()
	endDate = endDate.UTC()
	if !endDate.After(now) {
		return nil, fmt.Errorf("%w: delegation end date must be in the future", ErrValidation)
	}
	maxDays, _ := MaxDelegationDays(grantorRole.RoleType, roleType)
	if endDate.Sub(now) > time.Duration(maxDays)*24*time.Hour {
		return nil, fmt.Errorf("%w: delegation period exceeds the %d-day maximum for %s to %s", ErrValidation, maxDays, grantorRole.RoleType, roleType)
	}

	grantee, err := s.members.GetByUserID(householdID, granteeUserID)
	if err != nil {
		return nil, err
	}
	if grantee == nil {
		return nil, fmt.Errorf("%w: user %s is not a member of household %d", ErrNotFound, granteeUserID, householdID)
	}
	if !grantee.Active {
		return nil, fmt.Errorf("%w: member %d is inactive", ErrValidation, grantee.ID)
	}

	role, err := s.roles.ReplaceActiveRole(model.HouseholdRole{
		MemberID:          grantee.ID,
		HouseholdID:       householdID,
		RoleType:          roleType,
		AssignedBy:        grantorUserID,
		IsDelegated:       true,
		DelegatedBy:       &grantorUserID,
		DelegationEndDate: &endDate,
	})
	if err != nil {
		return nil, err
	}

	requiresApproval := RequiresApprovalForDelegation(grantorRole.RoleType, roleType)

	s.audit.Record(audit.Entry{
		Action:     "RoleDelegated",
		EntityType: "household_role",
		EntityID:   &role.ID,
		Details:    fmt.Sprintf("role %s delegated to member %d until %s", roleType, grantee.ID, endDate.Format(time.RFC3339)),
		ActorID:    grantorUserID,
	})
	s.logger.Info("role delegated",
		"household_id", householdID, "grantee_member", grantee.ID, "role", roleType,
		"end_date", endDate, "requires_approval", requiresApproval)

	return &Delegation{Role: role, RequiresApproval: requiresApproval}, nil
}

// RevokeDelegation ends a delegation before its end date. The revoker must
// be the original grantor or a household admin. Revoking an already-inactive
// delegation fails rather than silently succeeding.
func (s *DelegationService) RevokeDelegation(revokerUserID string, roleID int64) error {
	role, err := s.roles.GetByID(roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("%w: role %d", ErrNotFound, roleID)
	}
	if !role.IsDelegated {
		return fmt.Errorf("%w: role %d is not a delegation", ErrValidation, roleID)
	}
	if !role.Active {
		return fmt.Errorf("%w: delegation %d is already revoked", ErrValidation, roleID)
	}

	isGrantor := role.DelegatedBy != nil && *role.DelegatedBy == revokerUserID
	if !isGrantor {
		isAdmin, err := s.roles.HasRole(revokerUserID, role.HouseholdID, model.RoleAdmin)
		if err != nil {
			return err
		}
		if !isAdmin {
			return fmt.Errorf("%w: only the grantor or an admin can revoke a delegation", ErrNotAuthorized)
		}
	}

	ok, err := s.roles.Deactivate(roleID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: delegation %d is already revoked", ErrValidation, roleID)
	}

	s.audit.Record(audit.Entry{
		Action:     "DelegationRevoked",
		EntityType: "household_role",
		EntityID:   &role.ID,
		Details:    fmt.Sprintf("delegation of %s to member %d revoked", role.RoleType, role.MemberID),
		ActorID:    revokerUserID,
	})
	s.logger.Info("delegation revoked", "household_id", role.HouseholdID, "role_id", roleID)
	return nil
}

// GetActiveDelegations lists the household's delegations that are active and
// not yet past their end date. Expired rows are filtered at read time rather
// than swept by a background job.
func (s *DelegationService) GetActiveDelegations(householdID int64) ([]model.HouseholdRole, error) {
	return s.roles.ActiveDelegations(householdID, time.Now())
}
