package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/traldis/court-queue/services"
)

// AdminOnly guards admin routes with the session token issued by the auth
// service. Tokens travel as "Authorization: Bearer <token>".
func AdminOnly(auth services.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "authorization header must be 'Bearer <token>'")
				return
			}

			if err := auth.Validate(parts[1]); err != nil {
				logger.Debug("rejected admin token", slog.String("error", err.Error()))
				switch err {
				case services.ErrSessionExpired:
					unauthorized(w, "session expired")
				default:
					unauthorized(w, "invalid session token")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
