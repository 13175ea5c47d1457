package handler

import (
	"context"
	"log/slog"
	"net/http"

	jwtToken "testCraftBot/internal/pkg/jwt"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// AccountID возвращает id аккаунта, положенный в контекст после
// успешной проверки сессионного токена.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)

	return id
}

// AuthMiddleware проверяет сессионную cookie auth_token и пропускает
// запрос дальше только с валидным токеном.
func AuthMiddleware(
	log *slog.Logger,
	sessionSecret string,
) func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) {
			const op = "handler.AuthMiddleware"

			log := log.With(slog.String("op", op))

			cookie, err := r.Cookie("auth_token")
			if err != nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			accountID, err := jwtToken.VerifyToken(cookie.Value, []byte(sessionSecret))
			if err != nil {
				log.Warn("invalid session token", slog.String("error", err.Error()))
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			next(w, r.WithContext(ctx))
		}
	}
}
