package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/database"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

func setupAuthTest(t *testing.T) (*auth.TokenService, *store.RoleStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := store.NewHouseholdStore(db).Create("Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	members := store.NewMemberStore(db)
	m, err := members.Create(h.ID, "user-1", "Alice", nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	roles := store.NewRoleStore(db)
	if _, err := roles.Insert(model.HouseholdRole{
		MemberID:    m.ID,
		HouseholdID: h.ID,
		RoleType:    model.RoleAdmin,
		AssignedBy:  "user-1",
	}); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	return auth.NewTokenService("test-secret", "hardbottle", time.Hour), roles, h.ID
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	tokens, roles, householdID := setupAuthTest(t)

	var captured auth.AuthContext
	handler := RequireAuth(tokens, roles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
	}))

	token, err := tokens.GenerateToken("user-1", householdID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.UserID != "user-1" || captured.HouseholdID != householdID {
		t.Errorf("auth context = %+v", captured)
	}
	if captured.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", captured.Role)
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	tokens, roles, _ := setupAuthTest(t)

	handler := RequireAuth(tokens, roles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	tokens, roles, _ := setupAuthTest(t)

	handler := RequireAuth(tokens, roles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthNoActiveRole(t *testing.T) {
	tokens, roles, householdID := setupAuthTest(t)

	var captured auth.AuthContext
	handler := RequireAuth(tokens, roles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
	}))

	// Token for a user with no membership: authenticated but role-less.
	token, err := tokens.GenerateToken("user-stranger", householdID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.Role != "" {
		t.Errorf("role = %q, want empty", captured.Role)
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/members", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: "user-1", Role: model.RoleAdmin}))
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/members", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: "user-2", Role: model.RoleEditor}))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("editor status = %d, want 403", rec.Code)
	}
}
