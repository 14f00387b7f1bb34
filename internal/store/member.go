package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hardbottle/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, household_id, user_id, display_name, date_of_birth, pin IS NOT NULL, active, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	var dob sql.NullTime
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.DisplayName, &dob, &m.HasPIN, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		m.DateOfBirth = &dob.Time
	}
	return &m, nil
}

func (s *MemberStore) Create(householdID int64, userID, displayName string, dateOfBirth *time.Time) (*model.HouseholdMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO household_members (household_id, user_id, display_name, date_of_birth) VALUES (?, ?, ?, ?)`,
		householdID, userID, displayName, dateOfBirth,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM household_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByUserID(householdID int64, userID string) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(
		`SELECT `+memberCols+` FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user id: %w", err)
	}
	return m, nil
}

func (s *MemberStore) ListByHousehold(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM household_members WHERE household_id = ? AND active = 1 ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) Update(id int64, displayName string, dateOfBirth *time.Time) (*model.HouseholdMember, error) {
	_, err := s.db.Exec(
		`UPDATE household_members SET display_name = ?, date_of_birth = ? WHERE id = ?`,
		displayName, dateOfBirth, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetByID(id)
}

// Deactivate soft-disables a member. The row and its role history are kept.
func (s *MemberStore) Deactivate(id int64) error {
	_, err := s.db.Exec(`UPDATE household_members SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}
	return nil
}

func (s *MemberStore) SetPIN(id int64, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE household_members SET pin = ? WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *MemberStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(`UPDATE household_members SET pin = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *MemberStore) GetPINHash(id int64) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM household_members WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("member not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}
