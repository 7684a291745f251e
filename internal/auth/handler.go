package auth

import (
	"encoding/json"
	"net/http"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/guard"
)

// JWKSHandler serves the public signing key.
func JWKSHandler(tokens *TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokens.JWKS())
	}
}

// JSONDeny is a guard.DenyFunc for API routes: 401 when signed out, 403 when
// a capability is missing.
func JSONDeny(w http.ResponseWriter, r *http.Request, d guard.Decision) {
	status, msg := http.StatusForbidden, "forbidden"
	if d.RedirectTo == guard.LoginPath {
		status, msg = http.StatusUnauthorized, "authentication required"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
