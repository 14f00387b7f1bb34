package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/roles"
)

type PermissionHandler struct {
	permissions *roles.PermissionService
	logger      *slog.Logger
}

func NewPermissionHandler(ps *roles.PermissionService, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{permissions: ps, logger: logger}
}

// Check returns the structured policy decision for an action, so the UI can
// show the amount ceiling and approval requirement up front.
func (h *PermissionHandler) Check(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}

	ctx := r.Context()
	result, err := h.permissions.CheckPermission(auth.UserID(ctx), auth.HouseholdID(ctx), action)
	if err != nil {
		h.logger.Error("check permission", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "permission check failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CanPerform answers a yes/no question for an action and amount.
func (h *PermissionHandler) CanPerform(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}

	var amount float64
	if amountStr := r.URL.Query().Get("amount"); amountStr != "" {
		var err error
		amount, err = strconv.ParseFloat(amountStr, 64)
		if err != nil || amount < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a non-negative number"})
			return
		}
	}

	ctx := r.Context()
	allowed, err := h.permissions.CanPerformAction(auth.UserID(ctx), auth.HouseholdID(ctx), action, amount)
	if err != nil {
		h.logger.Error("can perform action", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "permission check failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}
