package auth

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/guard"
)

// CookieName is the session cookie set on login.
const CookieName = "stefano_session"

// Provider resolves guard.AuthState from the session cookie or a bearer token.
type Provider struct {
	tokens *TokenService
	logger *zap.SugaredLogger
}

func NewProvider(tokens *TokenService, logger *zap.SugaredLogger) *Provider {
	return &Provider{tokens: tokens, logger: logger}
}

// AuthState never reports loading: token verification is synchronous.
func (p *Provider) AuthState(r *http.Request) guard.AuthState {
	raw := tokenFromRequest(r)
	if raw == "" {
		return guard.AuthState{}
	}
	claims, err := p.tokens.Parse(raw)
	if err != nil {
		p.logger.Debugw("rejected session token", "err", err)
		return guard.AuthState{}
	}
	return guard.AuthState{
		User:            &guard.Principal{ID: claims.Subject, Email: claims.Email},
		IsAdmin:         claims.Admin,
		IsLoyaltyMember: claims.Loyalty,
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// SetSessionCookie stores token in the session cookie.
func (p *Provider) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.tokens.Config().CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (p *Provider) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.tokens.Config().CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

var _ guard.AuthProvider = (*Provider)(nil)

// Tokens exposes the token service for handlers that issue sessions.
func (p *Provider) Tokens() *TokenService { return p.tokens }
