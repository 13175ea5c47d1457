package postgresSettings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "testCraftBot/internal/repository"
)

// Storage — read-only key/value конфигурация приложения
// (credentials бота, ссылки, переопределения сообщений).
type Storage struct {
	db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) (*Storage, error) {
	return &Storage{db: pool}, nil
}

func (s *Storage) Value(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var value string

	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repo.ErrSettingNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	return value, nil
}

// ValueOrDefault возвращает default при отсутствии ключа или ошибке чтения.
func (s *Storage) ValueOrDefault(ctx context.Context, key string, def string) string {
	value, err := s.Value(ctx, key)
	if err != nil {
		return def
	}

	return value
}
