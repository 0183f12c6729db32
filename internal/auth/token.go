// Package auth issues and verifies the bearer tokens that guard catalog
// administration endpoints.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/server"
)

const (
	// Issuer is stamped into and required on every token.
	Issuer = "loftloot"
	// RoleAdmin may trigger reloads.
	RoleAdmin = "admin"
)

// ErrNoSecret is returned when an Authority is built without a signing key.
var ErrNoSecret = errors.New("auth: signing secret is empty")

// Claims are the JWT claims carried by an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authority signs and verifies HS256 tokens with a shared secret.
type Authority struct {
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Authority. The secret must be non-empty.
func New(secret string, logger *zap.Logger) (*Authority, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Authority{secret: []byte(secret), logger: logger, now: time.Now}, nil
}

// Issue signs a token for subject with the given role, valid for ttl.
func (a *Authority) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and checks signature, algorithm, issuer and expiry.
func (a *Authority) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

// RequireAdmin rejects requests without a valid admin bearer token.
func (a *Authority) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r)
		if !ok {
			server.Unauthorized(w, "missing bearer token", r.URL.Path)
			return
		}
		claims, err := a.Verify(raw)
		if err != nil {
			a.logger.Debug("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
			server.Unauthorized(w, "invalid or expired token", r.URL.Path)
			return
		}
		if claims.Role != RoleAdmin {
			server.Forbidden(w, "admin role required", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
