package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/hardbottle/internal/model"
)

func TestAuthContextRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: "user-1", HouseholdID: 7, Role: model.RoleAdmin}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != "user-1" {
		t.Errorf("UserID = %q", UserID(ctx))
	}
	if HouseholdID(ctx) != 7 {
		t.Errorf("HouseholdID = %d", HouseholdID(ctx))
	}
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
}

func TestAuthContextAbsent(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != "" {
		t.Error("expected empty user id")
	}
	if HouseholdID(ctx) != 0 {
		t.Error("expected zero household id")
	}
	if IsAdmin(ctx) {
		t.Error("expected not admin")
	}
}

func TestIsAdminNonAdminRole(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: "user-1", HouseholdID: 7, Role: model.RoleEditor})
	if IsAdmin(ctx) {
		t.Error("editor is not admin")
	}
}
