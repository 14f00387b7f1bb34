package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/roles"
	"github.com/dukerupert/hardbottle/internal/websocket"
)

type DelegationHandler struct {
	delegations *roles.DelegationService
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewDelegationHandler(ds *roles.DelegationService, hub *websocket.Hub, logger *slog.Logger) *DelegationHandler {
	return &DelegationHandler{delegations: ds, hub: hub, logger: logger}
}

func (h *DelegationHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *DelegationHandler) Delegate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GranteeUserID string `json:"grantee_user_id"`
		RoleType      string `json:"role_type"`
		EndDate       string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.GranteeUserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "grantee_user_id is required"})
		return
	}

	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be RFC 3339"})
		return
	}

	ctx := r.Context()
	grant, err := h.delegations.DelegateRole(auth.UserID(ctx), req.GranteeUserID, auth.HouseholdID(ctx), model.RoleType(req.RoleType), endDate)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("role", "delegated", grant.Role.ID, map[string]any{
		"member_id":         grant.Role.MemberID,
		"role_type":         grant.Role.RoleType,
		"requires_approval": grant.RequiresApproval,
	}))
	writeJSON(w, http.StatusCreated, grant)
}

func (h *DelegationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	roleID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.delegations.RevokeDelegation(auth.UserID(r.Context()), roleID); err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("role", "delegation_revoked", roleID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *DelegationHandler) List(w http.ResponseWriter, r *http.Request) {
	delegations, err := h.delegations.GetActiveDelegations(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list delegations", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list delegations"})
		return
	}
	if delegations == nil {
		delegations = []model.HouseholdRole{}
	}
	writeJSON(w, http.StatusOK, delegations)
}
