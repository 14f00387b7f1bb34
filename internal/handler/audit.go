package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

type AuditHandler struct {
	audits *store.AuditStore
	logger *slog.Logger
}

func NewAuditHandler(as *store.AuditStore, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{audits: as, logger: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1-1000"})
			return
		}
		limit = n
	}

	entries, err := h.audits.ListRecent(limit)
	if err != nil {
		h.logger.Error("list audit entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list audit entries"})
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
