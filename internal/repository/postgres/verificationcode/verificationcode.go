package postgresVerificationCode

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

// Replace удаляет непогашенный код для (account, type) и вставляет новый
// в одной транзакции — инвариант "не более одного живого кода".
func (s *Storage) Replace(ctx context.Context, code models.VerificationCode) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(
		ctx,
		`DELETE FROM verification_codes WHERE account_id = $1 AND type = $2 AND used_at IS NULL`,
		code.AccountID,
		code.Type,
	)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO verification_codes(account_id, code_hash, type, expires_at, created_at) VALUES($1, $2, $3, $4, $5)`,
		code.AccountID,
		code.CodeHash,
		code.Type,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) Unconsumed(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) (*models.VerificationCode, error) {
	query := `SELECT account_id, code_hash, type, expires_at, created_at, used_at
		FROM verification_codes
		WHERE account_id = $1 AND type = $2 AND used_at IS NULL`

	var code models.VerificationCode

	err := s.db.QueryRow(ctx, query, accountID, codeType).Scan(
		&code.AccountID,
		&code.CodeHash,
		&code.Type,
		&code.ExpiresAt,
		&code.CreatedAt,
		&code.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrCodeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &code, nil
}

func (s *Storage) MarkUsed(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) error {
	query := `UPDATE verification_codes SET used_at = $1
		WHERE account_id = $2 AND type = $3 AND used_at IS NULL`

	tag, err := s.db.Exec(ctx, query, time.Now(), accountID, codeType)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrCodeNotFound
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) error {
	query := `DELETE FROM verification_codes WHERE account_id = $1 AND type = $2 AND used_at IS NULL`

	_, err := s.db.Exec(ctx, query, accountID, codeType)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}

// DeleteExpired удаляет просроченные и погашенные записи, возвращает
// количество удалённых строк.
func (s *Storage) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM verification_codes WHERE expires_at < $1 OR used_at IS NOT NULL`

	tag, err := s.db.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}

	return tag.RowsAffected(), nil
}
