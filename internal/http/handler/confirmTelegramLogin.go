package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"testCraftBot/internal/domain/models"
	jwtToken "testCraftBot/internal/pkg/jwt"
	"testCraftBot/internal/repository"
)

type AccountProvider interface {
	ByLogin(ctx context.Context, login string) (*models.Account, error)
	MarkVerified(ctx context.Context, accountID uuid.UUID) error
}

type CodeVerifier interface {
	Verify(ctx context.Context, accountID uuid.UUID, input string, codeType models.CodeType) (bool, error)
}

type ConfirmTelegramLoginRequest struct {
	Login string `json:"login"`
	Code  string `json:"code"`
}

type ConfirmTelegramLoginResponse struct {
	Message string `json:"message"`
}

// ConfirmTelegramLoginHandler завершает вход: гасит одноразовый код,
// присланный ботом, и выдаёт сессионный токен.
func ConfirmTelegramLoginHandler(
	log *slog.Logger,
	accounts AccountProvider,
	codes CodeVerifier,
	sessionSecret string,
	sessionTTL time.Duration,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.ConfirmTelegramLoginHandler"

		log := log.With(slog.String("op", op))

		var req ConfirmTelegramLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Login == "" || req.Code == "" {
			log.Error("missing login or code")
			http.Error(w, "Login and code are required", http.StatusBadRequest)
			return
		}

		acc, err := accounts.ByLogin(r.Context(), req.Login)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				log.Warn("account not found", slog.String("login", req.Login))
				http.Error(w, "Invalid login or code", http.StatusUnauthorized)
				return
			}

			log.Error("failed to look up account", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ok, err := codes.Verify(r.Context(), acc.ID, req.Code, models.CodeTypeLogin)
		if err != nil {
			log.Error("failed to verify code", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !ok {
			log.Warn("invalid or expired code", slog.String("login", req.Login))
			http.Error(w, "Invalid login or code", http.StatusUnauthorized)
			return
		}

		// первый успешный вход подтверждает аккаунт
		if acc.Status != models.AccountStatusVerified {
			if err := accounts.MarkVerified(r.Context(), acc.ID); err != nil {
				log.Error("failed to mark account verified", slog.String("error", err.Error()))
			}
		}

		token, err := jwtToken.New(acc.ID.String(), sessionTTL, []byte(sessionSecret))
		if err != nil {
			log.Error("failed to create session token", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		cookie := &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			MaxAge:   int(sessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		http.SetCookie(w, cookie)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ConfirmTelegramLoginResponse{Message: "Login successful"})

		log.Info("telegram login confirmed", slog.String("login", req.Login))
	}
}
