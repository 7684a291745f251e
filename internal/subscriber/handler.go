package subscriber

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SubscribeRequest is the body of POST /api/push/subscribe.
type SubscribeRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	sub, err := h.svc.Subscribe(r.Context(), req.URL, req.Label)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidURL):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidURL.Error()})
		case errors.Is(err, ErrLabelTooLong):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrAlreadySubscribed):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			h.logger.Errorw("subscribe failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "subscribe failed"})
		}
		return
	}
	h.logger.Infow("push subscriber added", "id", sub.ID)
	h.writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list subscribers failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load subscribers"})
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
