package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hardbottle/internal/model"
)

// RoleStore persists role-assignment rows. Rows are an append-only history:
// replacing a member's role deactivates the prior active row and inserts a
// new one, it never deletes. A partial unique index on (member_id) WHERE
// active = 1 guarantees at most one active role per member even when two
// writers race.
type RoleStore struct {
	db *sql.DB
}

func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

const roleCols = `id, member_id, household_id, role_type, assigned_at, assigned_by, active, revoked_at, is_delegated, delegated_by, delegation_end_date`

func scanRole(scanner interface{ Scan(...any) error }) (*model.HouseholdRole, error) {
	var r model.HouseholdRole
	var revokedAt, endDate sql.NullTime
	var delegatedBy sql.NullString
	err := scanner.Scan(
		&r.ID, &r.MemberID, &r.HouseholdID, &r.RoleType, &r.AssignedAt, &r.AssignedBy,
		&r.Active, &revokedAt, &r.IsDelegated, &delegatedBy, &endDate,
	)
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		r.RevokedAt = &revokedAt.Time
	}
	if delegatedBy.Valid {
		r.DelegatedBy = &delegatedBy.String
	}
	if endDate.Valid {
		r.DelegationEndDate = &endDate.Time
	}
	return &r, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRole(e execer, r model.HouseholdRole) (int64, error) {
	result, err := e.Exec(
		`INSERT INTO household_roles (member_id, household_id, role_type, assigned_by, active, is_delegated, delegated_by, delegation_end_date)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		r.MemberID, r.HouseholdID, r.RoleType, r.AssignedBy, r.IsDelegated, r.DelegatedBy, r.DelegationEndDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert role: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func deactivateActive(e execer, memberID int64) error {
	_, err := e.Exec(
		`UPDATE household_roles SET active = 0, revoked_at = CURRENT_TIMESTAMP WHERE member_id = ? AND active = 1`,
		memberID,
	)
	if err != nil {
		return fmt.Errorf("deactivate active role: %w", err)
	}
	return nil
}

func (s *RoleStore) GetByID(id int64) (*model.HouseholdRole, error) {
	row := s.db.QueryRow(`SELECT `+roleCols+` FROM household_roles WHERE id = ?`, id)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return r, nil
}

// GetActiveRole resolves the active role held by the given user in the
// given household, or nil if they hold none.
func (s *RoleStore) GetActiveRole(userID string, householdID int64) (*model.HouseholdRole, error) {
	row := s.db.QueryRow(
		`SELECT r.id, r.member_id, r.household_id, r.role_type, r.assigned_at, r.assigned_by, r.active, r.revoked_at, r.is_delegated, r.delegated_by, r.delegation_end_date
		 FROM household_roles r
		 JOIN household_members m ON r.member_id = m.id
		 WHERE m.user_id = ? AND r.household_id = ? AND r.active = 1`,
		userID, householdID,
	)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active role: %w", err)
	}
	return r, nil
}

func (s *RoleStore) GetActiveRoleByMember(memberID int64) (*model.HouseholdRole, error) {
	row := s.db.QueryRow(`SELECT `+roleCols+` FROM household_roles WHERE member_id = ? AND active = 1`, memberID)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active role by member: %w", err)
	}
	return r, nil
}

// HasRole reports whether the user's active role exactly matches roleType.
func (s *RoleStore) HasRole(userID string, householdID int64, roleType model.RoleType) (bool, error) {
	r, err := s.GetActiveRole(userID, householdID)
	if err != nil {
		return false, err
	}
	return r != nil && r.RoleType == roleType, nil
}

// HasMinimumRole reports whether the user's active role is at least as
// privileged as the given role on the Admin…Child scale.
func (s *RoleStore) HasMinimumRole(userID string, householdID int64, minimum model.RoleType) (bool, error) {
	r, err := s.GetActiveRole(userID, householdID)
	if err != nil {
		return false, err
	}
	return r != nil && r.RoleType.AtLeast(minimum), nil
}

func (s *RoleStore) Insert(r model.HouseholdRole) (*model.HouseholdRole, error) {
	id, err := insertRole(s.db, r)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// DeactivatePriorActive marks the member's current active role inactive and
// stamps revoked_at. Call before inserting a replacement row.
func (s *RoleStore) DeactivatePriorActive(memberID int64) error {
	return deactivateActive(s.db, memberID)
}

// ReplaceActiveRole deactivates the member's current active role (if any)
// and inserts the given row as the new active role, in one transaction.
// The prior row is retained as history.
func (s *RoleStore) ReplaceActiveRole(r model.HouseholdRole) (*model.HouseholdRole, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deactivateActive(tx, r.MemberID); err != nil {
		return nil, err
	}
	id, err := insertRole(tx, r)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

// TransferAdmin swaps the household admin in a single transaction: the new
// member becomes the active admin and the previous admin is demoted to the
// limited role. There is no observable state with zero or two admins.
func (s *RoleStore) TransferAdmin(householdID, fromMemberID, toMemberID int64, actorUserID string) (*model.HouseholdRole, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deactivateActive(tx, fromMemberID); err != nil {
		return nil, err
	}
	if err := deactivateActive(tx, toMemberID); err != nil {
		return nil, err
	}

	adminID, err := insertRole(tx, model.HouseholdRole{
		MemberID:    toMemberID,
		HouseholdID: householdID,
		RoleType:    model.RoleAdmin,
		AssignedBy:  actorUserID,
	})
	if err != nil {
		return nil, err
	}
	if _, err := insertRole(tx, model.HouseholdRole{
		MemberID:    fromMemberID,
		HouseholdID: householdID,
		RoleType:    model.RoleLimited,
		AssignedBy:  actorUserID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(adminID)
}

// Deactivate marks a single role row inactive and stamps revoked_at.
// Returns false if the row was not active.
func (s *RoleStore) Deactivate(roleID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE household_roles SET active = 0, revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND active = 1`,
		roleID,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate role: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CountActive counts active roles of the given type in a household.
func (s *RoleStore) CountActive(householdID int64, roleType model.RoleType) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM household_roles WHERE household_id = ? AND role_type = ? AND active = 1`,
		householdID, roleType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active roles: %w", err)
	}
	return count, nil
}

// ActiveDelegations lists delegated roles in the household that are active
// and have not passed their end date. Expiry is applied at read time; rows
// past their end date stay in the table until revoked or replaced.
func (s *RoleStore) ActiveDelegations(householdID int64, now time.Time) ([]model.HouseholdRole, error) {
	rows, err := s.db.Query(
		`SELECT `+roleCols+` FROM household_roles
		 WHERE household_id = ? AND is_delegated = 1 AND active = 1 AND delegation_end_date > ?
		 ORDER BY delegation_end_date ASC`,
		householdID, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list active delegations: %w", err)
	}
	defer rows.Close()

	var roles []model.HouseholdRole
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delegation: %w", err)
		}
		roles = append(roles, *r)
	}
	return roles, rows.Err()
}

// ListByMember returns the member's full role history, newest first.
func (s *RoleStore) ListByMember(memberID int64) ([]model.HouseholdRole, error) {
	rows, err := s.db.Query(
		`SELECT `+roleCols+` FROM household_roles WHERE member_id = ? ORDER BY id DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles by member: %w", err)
	}
	defer rows.Close()

	var roles []model.HouseholdRole
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *r)
	}
	return roles, rows.Err()
}
