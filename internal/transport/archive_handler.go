package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ArchiveStats is the analytics read side of the ClickHouse mirror.
type ArchiveStats interface {
	EventKindCounts(ctx context.Context) (map[string]uint64, error)
}

// ArchiveHandler serves aggregates over the archived ledger. It is mounted
// only when the archive mirror is configured.
type ArchiveHandler struct {
	stats  ArchiveStats
	logger *zap.Logger
}

// NewArchiveHandler returns an ArchiveHandler instance.
func NewArchiveHandler(stats ArchiveStats, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		stats:  stats,
		logger: logger.Named("archiveTransport"),
	}
}

// Routes wires the handler into a mux.
func (h *ArchiveHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/archive/kinds", h.eventKindCounts)
	return mux
}

func (h *ArchiveHandler) eventKindCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.EventKindCounts(r.Context())
	if err != nil {
		h.logger.Error("query event kind counts", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

func (h *ArchiveHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}
