package roles

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/hardbottle/internal/audit"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// AssignmentService owns permanent role assignment, the two-row admin
// transfer, and role removal. Every mutation goes through a single
// transaction in the role store and is reported to the audit sink.
type AssignmentService struct {
	roles   *store.RoleStore
	members *store.MemberStore
	audit   audit.Sink
	logger  *slog.Logger
}

func NewAssignmentService(roles *store.RoleStore, members *store.MemberStore, sink audit.Sink, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{roles: roles, members: members, audit: sink, logger: logger}
}

// AssignRole gives the target member a new permanent role. The assigner must
// hold the admin role in the member's household. The member's prior active
// role, if any, is deactivated and kept as history.
func (s *AssignmentService) AssignRole(assignerUserID string, targetMemberID int64, roleType model.RoleType) (*model.HouseholdRole, error) {
	if !roleType.Valid() {
		return nil, fmt.Errorf("%w: unknown role type %q", ErrValidation, roleType)
	}

	member, err := s.members.GetByID(targetMemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, targetMemberID)
	}
	if !member.Active {
		return nil, fmt.Errorf("%w: member %d is inactive", ErrValidation, targetMemberID)
	}

	assignerRole, err := s.roles.GetActiveRole(assignerUserID, member.HouseholdID)
	if err != nil {
		return nil, err
	}
	if assignerRole == nil || assignerRole.RoleType != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admin can assign roles", ErrNotAuthorized)
	}

	if roleType == model.RoleChild && member.DateOfBirth == nil {
		return nil, fmt.Errorf("%w: date of birth required for child role", ErrValidation)
	}

	role, err := s.roles.ReplaceActiveRole(model.HouseholdRole{
		MemberID:    member.ID,
		HouseholdID: member.HouseholdID,
		RoleType:    roleType,
		AssignedBy:  assignerUserID,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(audit.Entry{
		Action:     "RoleAssigned",
		EntityType: "household_role",
		EntityID:   &role.ID,
		Details:    fmt.Sprintf("member %d assigned role %s", member.ID, roleType),
		ActorID:    assignerUserID,
	})
	s.logger.Info("role assigned", "household_id", member.HouseholdID, "member_id", member.ID, "role", roleType, "assigned_by", assignerUserID)
	return role, nil
}

// TransferAdminRole moves the admin role to another member in one
// transaction. The outgoing admin steps down to the limited role rather
// than being left roleless, and at no observable point does the household
// have zero or two admins.
func (s *AssignmentService) TransferAdminRole(currentAdminUserID, newAdminUserID string, householdID int64) (*model.HouseholdRole, error) {
	currentRole, err := s.roles.GetActiveRole(currentAdminUserID, householdID)
	if err != nil {
		return nil, err
	}
	if currentRole == nil || currentRole.RoleType != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only the current admin can transfer the admin role", ErrNotAuthorized)
	}

	newMember, err := s.members.GetByUserID(householdID, newAdminUserID)
	if err != nil {
		return nil, err
	}
	if newMember == nil {
		return nil, fmt.Errorf("%w: user %s is not a member of household %d", ErrNotFound, newAdminUserID, householdID)
	}
	if !newMember.Active {
		return nil, fmt.Errorf("%w: member %d is inactive", ErrValidation, newMember.ID)
	}
	if newMember.ID == currentRole.MemberID {
		return nil, fmt.Errorf("%w: cannot transfer the admin role to its current holder", ErrValidation)
	}

	adminRole, err := s.roles.TransferAdmin(householdID, currentRole.MemberID, newMember.ID, currentAdminUserID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(audit.Entry{
		Action:     "AdminTransferred",
		EntityType: "household_role",
		EntityID:   &adminRole.ID,
		Details:    fmt.Sprintf("admin transferred from member %d to member %d", currentRole.MemberID, newMember.ID),
		ActorID:    currentAdminUserID,
	})
	s.logger.Info("admin transferred", "household_id", householdID, "from_member", currentRole.MemberID, "to_member", newMember.ID)
	return adminRole, nil
}

// RemoveRole deactivates the member's active role. Removing the household's
// sole active admin is refused; transfer the admin role instead.
func (s *AssignmentService) RemoveRole(requestorUserID string, memberID int64) error {
	member, err := s.members.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: member %d", ErrNotFound, memberID)
	}

	isAdmin, err := s.roles.HasRole(requestorUserID, member.HouseholdID, model.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: only admin can remove roles", ErrNotAuthorized)
	}

	role, err := s.roles.GetActiveRoleByMember(memberID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("%w: member %d has no active role", ErrNotFound, memberID)
	}

	if role.RoleType == model.RoleAdmin {
		count, err := s.roles.CountActive(member.HouseholdID, model.RoleAdmin)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastAdmin
		}
	}

	if _, err := s.roles.Deactivate(role.ID); err != nil {
		return err
	}

	s.audit.Record(audit.Entry{
		Action:     "RoleRemoved",
		EntityType: "household_role",
		EntityID:   &role.ID,
		Details:    fmt.Sprintf("member %d role %s removed", memberID, role.RoleType),
		ActorID:    requestorUserID,
	})
	s.logger.Info("role removed", "household_id", member.HouseholdID, "member_id", memberID, "role", role.RoleType)
	return nil
}
