package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "user-claims"

// ClaimsFromContext returns the authenticated caller's claims, or nil when
// the request skipped authentication.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims
}

// Authenticate validates the Bearer token and stores the claims on the
// request context.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, "authorization header required", nil)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeJSON(w, http.StatusUnauthorized, "invalid authorization header", nil)
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				status := http.StatusUnauthorized
				message := "invalid token"
				if err == security.ErrExpiredToken {
					message = "token has expired"
				}
				writeJSON(w, status, message, nil)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin callers. It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin() {
			writeJSON(w, http.StatusForbidden, "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs method, path, status and latency for every request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
