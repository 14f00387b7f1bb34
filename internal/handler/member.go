package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/store"
	"github.com/dukerupert/hardbottle/internal/websocket"
)

type MemberHandler struct {
	members *store.MemberStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: ms, hub: hub, logger: logger}
}

func (h *MemberHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func parseDateOfBirth(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListByHousehold(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
		DateOfBirth string `json:"date_of_birth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display_name is required"})
		return
	}
	// Members joining without an upstream identity get a generated one.
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date_of_birth must be YYYY-MM-DD"})
		return
	}

	member, err := h.members.Create(auth.HouseholdID(r.Context()), req.UserID, req.DisplayName, dob)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create member"})
		return
	}

	h.broadcast(websocket.NewMessage("member", "created", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.members.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if existing == nil || existing.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
		DateOfBirth string `json:"date_of_birth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		req.DisplayName = existing.DisplayName
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date_of_birth must be YYYY-MM-DD"})
		return
	}
	if dob == nil {
		dob = existing.DateOfBirth
	}

	member, err := h.members.Update(id, req.DisplayName, dob)
	if err != nil {
		h.logger.Error("update member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update member"})
		return
	}

	h.broadcast(websocket.NewMessage("member", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, member)
}

// Deactivate soft-disables a member when they leave the household. Role
// history stays behind for the audit trail.
func (h *MemberHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.members.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if existing == nil || existing.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	if err := h.members.Deactivate(id); err != nil {
		h.logger.Error("deactivate member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to deactivate member"})
		return
	}

	h.broadcast(websocket.NewMessage("member", "deactivated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *MemberHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.PIN) < 4 || len(req.PIN) > 8 || !isDigits(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be 4-8 digits"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}

	if err := h.members.SetPIN(id, string(hash)); err != nil {
		h.logger.Error("set pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *MemberHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.members.ClearPIN(id); err != nil {
		h.logger.Error("clear pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VerifyPIN is the sign-off primitive used when a permission check comes
// back with requires_approval: an approver keys in their PIN to confirm.
func (h *MemberHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	hash, err := h.members.GetPINHash(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no PIN set"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
