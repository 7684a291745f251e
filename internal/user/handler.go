package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/auth"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user/entity"
)

// Handler exposes HTTP endpoints for user operations (signup / login).
type Handler struct {
	svc      *UserService
	sessions *auth.Provider
	logger   *zap.SugaredLogger
}

func NewHandler(svc *UserService, sessions *auth.Provider, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// SignupRequest request body for signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// FlagsRequest updates capability flags.
type FlagsRequest struct {
	IsAdmin         bool `json:"is_admin"`
	IsLoyaltyMember bool `json:"is_loyalty_member"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignup):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			h.logger.Warnw("signup failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "signup failed"})
		}
		return
	}
	h.startSession(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		if errors.Is(err, ErrBadCredentials) {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.startSession(w, http.StatusOK, u)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the AuthState the route guard sees for this request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sessions.AuthState(r))
}

// UpdateFlags handles PUT /api/users/{id}/flags. Mount it behind an admin guard.
func (h *Handler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req FlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.SetFlags(r.Context(), id, req.IsAdmin, req.IsLoyaltyMember)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.logger.Warnw("update flags failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
		return
	}
	h.logger.Infow("user flags updated", "id", id, "admin", u.IsAdmin, "loyalty", u.IsLoyaltyMember)
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) startSession(w http.ResponseWriter, status int, u *entity.User) {
	tok, exp, err := h.sessions.Tokens().Issue(auth.Subject{
		ID:              u.ID,
		Email:           u.Email,
		IsAdmin:         u.IsAdmin,
		IsLoyaltyMember: u.IsLoyaltyMember,
	})
	if err != nil {
		h.logger.Errorw("issue token failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session failed"})
		return
	}
	h.sessions.SetSessionCookie(w, tok, exp)
	h.writeJSON(w, status, SessionResponse{Token: tok, User: u})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
