package store

import (
	"testing"
	"time"

	"github.com/dukerupert/hardbottle/internal/database"
)

func setupMemberTestDB(t *testing.T) (*MemberStore, *HouseholdStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMemberStore(db), NewHouseholdStore(db)
}

func TestMemberCreate(t *testing.T) {
	ms, hs := setupMemberTestDB(t)

	h, err := hs.Create("Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	dob := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	m, err := ms.Create(h.ID, "user-1", "Alice", &dob)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", m.UserID, "user-1")
	}
	if m.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", m.DisplayName, "Alice")
	}
	if m.DateOfBirth == nil {
		t.Fatal("expected date_of_birth")
	}
	if !m.Active {
		t.Error("new member should be active")
	}
	if m.HasPIN {
		t.Error("new member should have no PIN")
	}
}

func TestMemberCreateDuplicateUser(t *testing.T) {
	ms, hs := setupMemberTestDB(t)

	h, _ := hs.Create("Test Household")
	if _, err := ms.Create(h.ID, "user-1", "Alice", nil); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := ms.Create(h.ID, "user-1", "Alice Again", nil); err == nil {
		t.Fatal("expected error for duplicate user in household")
	}
}

func TestMemberGetByUserID(t *testing.T) {
	ms, hs := setupMemberTestDB(t)

	h, _ := hs.Create("Test Household")
	created, err := ms.Create(h.ID, "user-1", "Alice", nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	m, err := ms.GetByUserID(h.ID, "user-1")
	if err != nil {
		t.Fatalf("get by user id: %v", err)
	}
	if m == nil || m.ID != created.ID {
		t.Fatalf("got %+v, want member %d", m, created.ID)
	}

	m, err = ms.GetByUserID(h.ID, "nobody")
	if err != nil {
		t.Fatalf("get by user id: %v", err)
	}
	if m != nil {
		t.Error("expected nil for unknown user")
	}
}

func TestMemberDeactivate(t *testing.T) {
	ms, hs := setupMemberTestDB(t)

	h, _ := hs.Create("Test Household")
	m, _ := ms.Create(h.ID, "user-1", "Alice", nil)

	if err := ms.Deactivate(m.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got == nil {
		t.Fatal("deactivated member should still exist")
	}
	if got.Active {
		t.Error("member should be inactive")
	}

	members, err := ms.ListByHousehold(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected 0 active members, got %d", len(members))
	}
}

func TestMemberPINLifecycle(t *testing.T) {
	ms, hs := setupMemberTestDB(t)

	h, _ := hs.Create("Test Household")
	m, _ := ms.Create(h.ID, "user-1", "Alice", nil)

	hash, err := ms.GetPINHash(m.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "" {
		t.Error("expected empty hash before SetPIN")
	}

	if err := ms.SetPIN(m.ID, "hashed-pin"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	hash, err = ms.GetPINHash(m.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "hashed-pin" {
		t.Errorf("hash = %q, want %q", hash, "hashed-pin")
	}

	got, _ := ms.GetByID(m.ID)
	if !got.HasPIN {
		t.Error("has_pin should be true after SetPIN")
	}

	if err := ms.ClearPIN(m.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	got, _ = ms.GetByID(m.ID)
	if got.HasPIN {
		t.Error("has_pin should be false after ClearPIN")
	}
}
