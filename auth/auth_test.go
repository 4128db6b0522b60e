package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "battery staple"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "correct horse"), ErrInvalidCredentials)

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestNewIssuer(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)

	i, err := NewIssuer("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, i.TTL())
}

func TestIssueVerify(t *testing.T) {
	i, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := i.Issue("alice")
		require.NoError(t, err)

		claims, err := i.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("unique ids", func(t *testing.T) {
		a, err := i.Issue("alice")
		require.NoError(t, err)
		b, err := i.Issue("alice")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewIssuer("other", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = i.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := NewIssuer("secret", time.Minute)
		require.NoError(t, err)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.Issue("alice")
		require.NoError(t, err)

		_, err = i.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := i.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", Issuer: issuer},
		})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = i.Verify(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	i, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, err := i.Issue("alice")
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Username(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := NewMiddleware(i, nil, "/api/health").Handler(next)

	tests := []struct {
		name     string
		path     string
		header   string
		status   int
		username string
	}{
		{"valid token", "/api/projects", "Bearer " + token, http.StatusNoContent, "alice"},
		{"lowercase scheme", "/api/projects", "bearer " + token, http.StatusNoContent, "alice"},
		{"missing header", "/api/projects", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/projects", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "/api/projects", "Bearer junk", http.StatusUnauthorized, ""},
		{"skipped path", "/api/health", "", http.StatusNoContent, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.username, seen)
			if tc.status == http.StatusUnauthorized {
				assert.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
			}
		})
	}
}
