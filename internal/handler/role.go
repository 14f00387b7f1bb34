package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/roles"
	"github.com/dukerupert/hardbottle/internal/store"
	"github.com/dukerupert/hardbottle/internal/websocket"
)

type RoleHandler struct {
	assignments *roles.AssignmentService
	validator   *roles.Validator
	roleStore   *store.RoleStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRoleHandler(as *roles.AssignmentService, v *roles.Validator, rs *store.RoleStore, hub *websocket.Hub, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{assignments: as, validator: v, roleStore: rs, hub: hub, logger: logger}
}

func (h *RoleHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID int64  `json:"member_id"`
		RoleType string `json:"role_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	role, err := h.assignments.AssignRole(auth.UserID(r.Context()), req.MemberID, model.RoleType(req.RoleType))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("role", "assigned", role.ID, map[string]any{
		"member_id": role.MemberID,
		"role_type": role.RoleType,
	}))
	writeJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewAdminUserID string `json:"new_admin_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.NewAdminUserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new_admin_user_id is required"})
		return
	}

	ctx := r.Context()
	role, err := h.assignments.TransferAdminRole(auth.UserID(ctx), req.NewAdminUserID, auth.HouseholdID(ctx))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("role", "admin_transferred", role.ID, map[string]any{
		"member_id": role.MemberID,
	}))
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Remove(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.assignments.RemoveRole(auth.UserID(r.Context()), memberID); err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("role", "removed", memberID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Validate pre-checks a proposed assignment without mutating anything.
func (h *RoleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID int64  `json:"member_id"`
		RoleType string `json:"role_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ctx := r.Context()
	result, err := h.validator.ValidateRoleAssignment(auth.UserID(ctx), auth.HouseholdID(ctx), req.MemberID, model.RoleType(req.RoleType))
	if err != nil {
		h.logger.Error("validate role assignment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "validation failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CheckHousehold runs the standalone one-admin consistency check.
func (h *RoleHandler) CheckHousehold(w http.ResponseWriter, r *http.Request) {
	valid, err := h.validator.ValidateHouseholdRoles(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("validate household roles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "validation failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_valid": valid})
}

// History returns a member's full role history, active row first.
func (h *RoleHandler) History(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	history, err := h.roleStore.ListByMember(memberID)
	if err != nil {
		h.logger.Error("list role history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list roles"})
		return
	}
	if history == nil {
		history = []model.HouseholdRole{}
	}
	writeJSON(w, http.StatusOK, history)
}
