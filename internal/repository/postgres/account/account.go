package postgresAccount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"testCraftBot/internal/domain/models"
	repo "testCraftBot/internal/repository"
)

type Storage struct {
	db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) (*Storage, error) {
	return &Storage{db: pool}, nil
}

const accountColumns = `id, login, name, chat_id, language, status, profile_photo_url, chat_username, created_at, updated_at`

func (s *Storage) scanAccount(row pgx.Row) (*models.Account, error) {
	var acc models.Account
	var chatID *int64
	var photoURL, chatUsername *string

	err := row.Scan(
		&acc.ID,
		&acc.Login,
		&acc.Name,
		&chatID,
		&acc.Language,
		&acc.Status,
		&photoURL,
		&chatUsername,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrAccountNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if chatID != nil {
		acc.ChatID = *chatID
	}
	if photoURL != nil {
		acc.ProfilePhotoURL = *photoURL
	}
	if chatUsername != nil {
		acc.ChatUsername = *chatUsername
	}

	return &acc, nil
}

func (s *Storage) ByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login = $1`

	return s.scanAccount(s.db.QueryRow(ctx, query, login))
}

func (s *Storage) ByChatID(ctx context.Context, chatID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE chat_id = $1`

	return s.scanAccount(s.db.QueryRow(ctx, query, chatID))
}

func (s *Storage) LinkChat(ctx context.Context, accountID uuid.UUID, chatID int64) error {
	query := `UPDATE accounts SET chat_id = $1, updated_at = $2 WHERE id = $3`

	tag, err := s.db.Exec(ctx, query, chatID, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrAccountNotFound
	}

	return nil
}

func (s *Storage) UpdateProfilePhoto(ctx context.Context, accountID uuid.UUID, url string) error {
	query := `UPDATE accounts SET profile_photo_url = $1, updated_at = $2 WHERE id = $3`

	_, err := s.db.Exec(ctx, query, url, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}

func (s *Storage) UpdateChatUsername(ctx context.Context, accountID uuid.UUID, username string) error {
	query := `UPDATE accounts SET chat_username = $1, updated_at = $2 WHERE id = $3`

	_, err := s.db.Exec(ctx, query, username, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}

func (s *Storage) UpdateLanguage(ctx context.Context, accountID uuid.UUID, language string) error {
	query := `UPDATE accounts SET language = $1, updated_at = $2 WHERE id = $3`

	_, err := s.db.Exec(ctx, query, language, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}

func (s *Storage) MarkVerified(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE accounts SET status = $1, updated_at = $2 WHERE id = $3`

	_, err := s.db.Exec(ctx, query, models.AccountStatusVerified, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}
