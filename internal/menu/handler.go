package menu

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the menu endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /api/menu.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list menu failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load menu"})
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/menu.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid menu payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNegativePrice):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.logger.Errorw("create menu item failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create menu item"})
		}
		return
	}
	h.logger.Infow("menu item created", "id", item.ID, "name", item.Name)
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
