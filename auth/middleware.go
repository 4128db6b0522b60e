package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithUsername returns a copy of ctx carrying username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

// Username returns the authenticated username stored in ctx, or "".
func Username(ctx context.Context) string {
	name, _ := ctx.Value(contextKey{}).(string)
	return name
}

// Middleware rejects requests without a valid bearer token.
type Middleware struct {
	issuer    *Issuer
	logger    *slog.Logger
	skipPaths map[string]bool
}

// NewMiddleware creates bearer-token middleware. Requests to skipPaths pass
// through unauthenticated.
func NewMiddleware(issuer *Issuer, logger *slog.Logger, skipPaths ...string) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &Middleware{issuer: issuer, logger: logger, skipPaths: skip}
}

// Handler wraps next with token verification.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "missing Authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(w, "invalid Authorization header format")
			return
		}

		claims, err := m.issuer.Verify(parts[1])
		if err != nil {
			m.logger.Debug("Token validation failed", "path", r.URL.Path, "error", err)
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), claims.Subject)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="cello"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
