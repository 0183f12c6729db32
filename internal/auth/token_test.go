package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loftloot/loftloot/internal/server"
	"github.com/loftloot/loftloot/internal/testutil"
)

func newAuthority(t *testing.T, secret string) (*Authority, *testutil.Clock) {
	t.Helper()
	a, err := New(secret, testutil.Logger())
	require.NoError(t, err)
	clock := testutil.NewClock(time.Now().Truncate(time.Second))
	a.now = clock.Now
	return a, clock
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("", testutil.Logger())
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	a, _ := newAuthority(t, "s3cret")

	raw, err := a.Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := a.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestVerify_Expired(t *testing.T) {
	a, clock := newAuthority(t, "s3cret")

	raw, err := a.Issue("ops", RoleAdmin, time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = a.Verify(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, _ := newAuthority(t, "one")
	verifier, _ := newAuthority(t, "two")

	raw, err := issuer.Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestRequireAdmin(t *testing.T) {
	a, _ := newAuthority(t, "s3cret")
	admin, err := a.Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewer, err := a.Issue("kiosk", "viewer", time.Hour)
	require.NoError(t, err)

	h := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantType string
	}{
		{"no header", "", http.StatusUnauthorized, server.ProblemTypeUnauthorized},
		{"basic scheme", "Basic b3BzOnB3", http.StatusUnauthorized, server.ProblemTypeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, server.ProblemTypeUnauthorized},
		{"viewer role", "Bearer " + viewer, http.StatusForbidden, server.ProblemTypeForbidden},
		{"admin", "Bearer " + admin, http.StatusNoContent, ""},
		{"lowercase scheme", "bearer " + admin, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantType == "" {
				return
			}
			var p server.Problem
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
			assert.Equal(t, tt.wantType, p.Type)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}
