package roles

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/hardbottle/internal/audit"
	"github.com/dukerupert/hardbottle/internal/database"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// engineFixture is a fresh in-memory database seeded with one household
// whose first member holds the active admin role.
type engineFixture struct {
	roles       *store.RoleStore
	members     *store.MemberStore
	assignments *AssignmentService
	delegations *DelegationService
	permissions *PermissionService
	validator   *Validator

	householdID   int64
	adminUserID   string
	adminMemberID int64
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	households := store.NewHouseholdStore(db)
	members := store.NewMemberStore(db)
	roleStore := store.NewRoleStore(db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := audit.Nop{}

	f := &engineFixture{
		roles:       roleStore,
		members:     members,
		assignments: NewAssignmentService(roleStore, members, sink, logger),
		delegations: NewDelegationService(roleStore, members, sink, logger),
		permissions: NewPermissionService(roleStore),
		validator:   NewValidator(roleStore, members),
		adminUserID: "user-admin",
	}

	h, err := households.Create("Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	f.householdID = h.ID

	admin, err := members.Create(h.ID, f.adminUserID, "Alice", nil)
	if err != nil {
		t.Fatalf("create admin member: %v", err)
	}
	f.adminMemberID = admin.ID

	if _, err := roleStore.Insert(model.HouseholdRole{
		MemberID:    admin.ID,
		HouseholdID: h.ID,
		RoleType:    model.RoleAdmin,
		AssignedBy:  f.adminUserID,
	}); err != nil {
		t.Fatalf("seed admin role: %v", err)
	}
	return f
}

// addMember creates an active member with no role.
func (f *engineFixture) addMember(t *testing.T, userID, name string, dob *time.Time) *model.HouseholdMember {
	t.Helper()
	m, err := f.members.Create(f.householdID, userID, name, dob)
	if err != nil {
		t.Fatalf("create member %s: %v", userID, err)
	}
	return m
}

// addMemberWithRole creates a member and gives them an active role directly
// through the store.
func (f *engineFixture) addMemberWithRole(t *testing.T, userID, name string, roleType model.RoleType) *model.HouseholdMember {
	t.Helper()
	m := f.addMember(t, userID, name, nil)
	if _, err := f.roles.Insert(model.HouseholdRole{
		MemberID:    m.ID,
		HouseholdID: f.householdID,
		RoleType:    roleType,
		AssignedBy:  f.adminUserID,
	}); err != nil {
		t.Fatalf("seed %s role for %s: %v", roleType, userID, err)
	}
	return m
}

func days(n int) time.Time {
	return time.Now().UTC().Add(time.Duration(n) * 24 * time.Hour)
}

func dateOfBirth(year int) *time.Time {
	d := time.Date(year, 3, 14, 0, 0, 0, 0, time.UTC)
	return &d
}
