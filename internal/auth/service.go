package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config controls token issuance and the session cookie.
type Config struct {
	Issuer       string
	TTL          time.Duration
	CookieSecure bool
}

// ConfigFromEnv reads auth config from environment variables.
func ConfigFromEnv() Config {
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		issuer = "stefano-api"
	}
	ttl := 24 * time.Hour
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	secure, _ := strconv.ParseBool(os.Getenv("AUTH_COOKIE_SECURE"))
	return Config{Issuer: issuer, TTL: ttl, CookieSecure: secure}
}

var ErrInvalidToken = errors.New("invalid token")

// Subject is what a session token says about its holder.
type Subject struct {
	ID              int64
	Email           string
	IsAdmin         bool
	IsLoyaltyMember bool
}

// Claims are the JWT claims of a session token.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Admin   bool   `json:"admin"`
	Loyalty bool   `json:"loyalty"`
	jwt.RegisteredClaims
}

// TokenService manages the signing key and issues session tokens.
type TokenService struct {
	key *rsa.PrivateKey
	kid string
	cfg Config
	now func() time.Time
}

// NewTokenService generates a fresh RSA key; tokens do not survive a restart.
func NewTokenService(cfg Config) (*TokenService, error) {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return newTokenServiceWithKey(cfg, k), nil
}

func newTokenServiceWithKey(cfg Config, k *rsa.PrivateKey) *TokenService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	// kid is base64 of the SHA256 of the modulus
	h := sha256.Sum256(k.PublicKey.N.Bytes())
	kid := base64.RawURLEncoding.EncodeToString(h[:8])
	return &TokenService{key: k, kid: kid, cfg: cfg, now: time.Now}
}

// Config returns the configuration the service was built with.
func (s *TokenService) Config() Config { return s.cfg }

// Issue signs a session token for sub.
func (s *TokenService) Issue(sub Subject) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)
	claims := Claims{
		Email:   sub.Email,
		Admin:   sub.IsAdmin,
		Loyalty: sub.IsLoyaltyMember,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.FormatInt(sub.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = s.kid
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies a session token and returns its claims.
func (s *TokenService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// JWKS returns a minimal JWKS containing the public key.
func (s *TokenService) JWKS() map[string]any {
	pub := s.key.PublicKey
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(new(big.Int).SetInt64(int64(pub.E)).Bytes())
	jwk := map[string]any{
		"kty": "RSA",
		"use": "sig",
		"alg": "RS256",
		"kid": s.kid,
		"n":   n,
		"e":   e,
	}
	return map[string]any{"keys": []any{jwk}}
}
