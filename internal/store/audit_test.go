package store

import (
	"testing"

	"github.com/dukerupert/hardbottle/internal/database"
	"github.com/dukerupert/hardbottle/internal/model"
)

func setupAuditTestDB(t *testing.T) *AuditStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuditStore(db)
}

func TestAuditInsertAndList(t *testing.T) {
	as := setupAuditTestDB(t)

	entityID := int64(42)
	entries := []model.AuditEntry{
		{Action: "RoleAssigned", EntityType: "household_role", EntityID: &entityID, Details: "member 1 assigned role editor", ActorID: "user-admin"},
		{Action: "RoleDelegated", EntityType: "household_role", ActorID: "user-admin", IPAddress: "192.168.1.10"},
	}
	for _, e := range entries {
		if err := as.Insert(e); err != nil {
			t.Fatalf("insert %q: %v", e.Action, err)
		}
	}

	got, err := as.ListRecent(10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}

	// Newest first
	if got[0].Action != "RoleDelegated" {
		t.Errorf("first action = %q, want %q", got[0].Action, "RoleDelegated")
	}
	if got[0].IPAddress != "192.168.1.10" {
		t.Errorf("ip = %q, want %q", got[0].IPAddress, "192.168.1.10")
	}
	if got[0].EntityID != nil {
		t.Error("expected nil entity id")
	}

	if got[1].EntityID == nil || *got[1].EntityID != 42 {
		t.Errorf("entity id = %v, want 42", got[1].EntityID)
	}
	if got[1].Details != "member 1 assigned role editor" {
		t.Errorf("details = %q", got[1].Details)
	}
}

func TestAuditListRecentLimit(t *testing.T) {
	as := setupAuditTestDB(t)

	for i := 0; i < 5; i++ {
		if err := as.Insert(model.AuditEntry{Action: "RoleAssigned", EntityType: "household_role", ActorID: "user-admin"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := as.ListRecent(3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got))
	}
}
