package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hardbottle/internal/audit"
	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	members    *store.MemberStore
	roles      *store.RoleStore
	audit      audit.Sink
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, ms *store.MemberStore, rs *store.RoleStore, sink audit.Sink, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, members: ms, roles: rs, audit: sink, logger: logger}
}

// Create makes a new household with the caller as its first member and
// active admin, so the one-admin invariant holds from the first row.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "Admin"
	}

	userID := auth.UserID(r.Context())

	household, err := h.households.Create(req.Name)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create household"})
		return
	}

	member, err := h.members.Create(household.ID, userID, req.DisplayName, nil)
	if err != nil {
		h.logger.Error("create founding member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create household"})
		return
	}

	role, err := h.roles.Insert(model.HouseholdRole{
		MemberID:    member.ID,
		HouseholdID: household.ID,
		RoleType:    model.RoleAdmin,
		AssignedBy:  userID,
	})
	if err != nil {
		h.logger.Error("seed admin role", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create household"})
		return
	}

	h.audit.Record(audit.Entry{
		Action:     "HouseholdCreated",
		EntityType: "household",
		EntityID:   &household.ID,
		ActorID:    userID,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"household": household,
		"member":    member,
		"role":      role,
	})
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	household, err := h.households.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}
	writeJSON(w, http.StatusOK, household)
}
