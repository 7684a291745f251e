package offline

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxPushPayload = 4 << 10

// WorkerFactory builds a fresh worker for the configured version.
type WorkerFactory func() (*Worker, error)

// Handler exposes the host's admin endpoints.
type Handler struct {
	host      *Host
	newWorker WorkerFactory
	logger    *zap.SugaredLogger
}

func NewHandler(host *Host, newWorker WorkerFactory, logger *zap.SugaredLogger) *Handler {
	return &Handler{host: host, newWorker: newWorker, logger: logger}
}

// Status handles GET /api/offline/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.host.Status())
}

// Install handles POST /api/offline/install by registering a new worker.
func (h *Handler) Install(w http.ResponseWriter, r *http.Request) {
	wk, err := h.newWorker()
	if err != nil {
		h.logger.Errorw("build offline worker failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "invalid offline configuration"})
		return
	}
	if err := h.host.Register(r.Context(), wk); err != nil {
		h.logger.Warnw("offline install rejected", "version", wk.Version(), "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.host.Status())
}

// Push handles POST /api/push. The raw body is the message text.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if !utf8.Valid(payload) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload must be utf-8 text"})
		return
	}
	n, err := h.host.Push(r.Context(), payload)
	switch {
	case errors.Is(err, ErrNoController):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case err != nil:
		h.logger.Warnw("push failed", "tag", n.Tag, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "notification delivery failed"})
	default:
		writeJSON(w, http.StatusAccepted, n)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
