package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/hardbottle/internal/audit"
	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/handler"
	"github.com/dukerupert/hardbottle/internal/middleware"
	"github.com/dukerupert/hardbottle/internal/roles"
	"github.com/dukerupert/hardbottle/internal/store"
	ws "github.com/dukerupert/hardbottle/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	householdH  *handler.HouseholdHandler
	memberH     *handler.MemberHandler
	roleH       *handler.RoleHandler
	delegationH *handler.DelegationHandler
	permissionH *handler.PermissionHandler
	auditH      *handler.AuditHandler
	roleStore   *store.RoleStore
	tokens      *auth.TokenService
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, tokens *auth.TokenService, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	householdStore := store.NewHouseholdStore(db)
	memberStore := store.NewMemberStore(db)
	roleStore := store.NewRoleStore(db)
	auditStore := store.NewAuditStore(db)

	sink := audit.NewRecorder(auditStore, logger.With("component", "audit"))

	rolesLogger := logger.With("component", "roles")
	assignments := roles.NewAssignmentService(roleStore, memberStore, sink, rolesLogger)
	delegations := roles.NewDelegationService(roleStore, memberStore, sink, rolesLogger)
	permissions := roles.NewPermissionService(roleStore)
	validator := roles.NewValidator(roleStore, memberStore)

	return &Server{
		db:          db,
		hub:         hub,
		householdH:  handler.NewHouseholdHandler(householdStore, memberStore, roleStore, sink, logger.With("component", "household")),
		memberH:     handler.NewMemberHandler(memberStore, hub, logger.With("component", "member")),
		roleH:       handler.NewRoleHandler(assignments, validator, roleStore, hub, logger.With("component", "role")),
		delegationH: handler.NewDelegationHandler(delegations, hub, logger.With("component", "delegation")),
		permissionH: handler.NewPermissionHandler(permissions, logger.With("component", "permission")),
		auditH:      handler.NewAuditHandler(auditStore, logger.With("component", "audit_api")),
		roleStore:   roleStore,
		tokens:      tokens,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.roleStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// Household routes
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)

	// Member routes — mutations are admin-only
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.Handle("POST /api/members", admin(s.memberH.Create))
	mux.Handle("PUT /api/members/{id}", admin(s.memberH.Update))
	mux.Handle("DELETE /api/members/{id}", admin(s.memberH.Deactivate))

	// Approval PIN routes — verify is rate-limited to slow brute force
	mux.Handle("POST /api/members/{id}/pin", admin(s.memberH.SetPIN))
	mux.Handle("DELETE /api/members/{id}/pin", admin(s.memberH.ClearPIN))
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.rateLimitedHandler(s.memberH.VerifyPIN))

	// Role routes — the engine enforces authorization itself
	mux.HandleFunc("POST /api/roles/assign", s.roleH.Assign)
	mux.HandleFunc("POST /api/roles/transfer-admin", s.roleH.TransferAdmin)
	mux.HandleFunc("POST /api/roles/validate", s.roleH.Validate)
	mux.HandleFunc("GET /api/roles/check", s.roleH.CheckHousehold)
	mux.HandleFunc("DELETE /api/members/{id}/role", s.roleH.Remove)
	mux.HandleFunc("GET /api/members/{id}/roles", s.roleH.History)

	// Delegation routes
	mux.HandleFunc("POST /api/delegations", s.delegationH.Delegate)
	mux.HandleFunc("GET /api/delegations", s.delegationH.List)
	mux.HandleFunc("DELETE /api/delegations/{id}", s.delegationH.Revoke)

	// Permission routes
	mux.HandleFunc("GET /api/permissions/check", s.permissionH.Check)
	mux.HandleFunc("GET /api/permissions/can", s.permissionH.CanPerform)

	// Audit trail
	mux.Handle("GET /api/audit", admin(s.auditH.List))

	// Live updates
	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
