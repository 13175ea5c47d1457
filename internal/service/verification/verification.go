package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	"testCraftBot/internal/repository"
)

const (
	codeTTL = 5 * time.Minute
	// после пяти неверных попыток код гасится
	maxAttempts = 5
)

type CodeRepo interface {
	Replace(ctx context.Context, code models.VerificationCode) error
	Unconsumed(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) error
	Delete(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) error
}

type cacheKey struct {
	accountID uuid.UUID
	codeType  models.CodeType
}

type cacheEntry struct {
	code      string
	expiresAt time.Time
	timer     *time.Timer
}

// Store выдаёт и гасит одноразовые коды. Write-through кэш хранит код
// в открытом виде до истечения TTL, durable-запись — только bcrypt-хэш.
type Store struct {
	log  *slog.Logger
	repo CodeRepo

	mu       sync.Mutex
	cache    map[cacheKey]*cacheEntry
	attempts map[cacheKey]int

	ttl time.Duration
	now func() time.Time
}

func New(log *slog.Logger, repo CodeRepo) *Store {
	return &Store{
		log:      log,
		repo:     repo,
		cache:    make(map[cacheKey]*cacheEntry),
		attempts: make(map[cacheKey]int),
		ttl:      codeTTL,
		now:      time.Now,
	}
}

// Generate возвращает равномерно случайный шестизначный код.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue генерирует код, сохраняет хэш durable-записью (вытесняя прежний
// непогашенный код для пары (account, type)) и кладёт код в кэш.
func (s *Store) Issue(ctx context.Context, accountID uuid.UUID, codeType models.CodeType) (string, error) {
	const op = "Verification.Issue"

	log := s.log.With(
		slog.String("op", op),
		slog.String("accountID", accountID.String()),
	)

	code, err := Generate()
	if err != nil {
		log.Error("failed to generate code", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash code", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	createdAt := s.now()
	expiresAt := createdAt.Add(s.ttl)

	err = s.repo.Replace(ctx, models.VerificationCode{
		AccountID: accountID,
		CodeHash:  hash,
		Type:      codeType,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	})
	if err != nil {
		log.Error("failed to store code", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := cacheKey{accountID: accountID, codeType: codeType}

	s.mu.Lock()
	if prev, ok := s.cache[key]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	entry := &cacheEntry{code: code, expiresAt: expiresAt}
	entry.timer = time.AfterFunc(s.ttl, func() {
		s.evict(key, entry)
	})
	s.cache[key] = entry
	delete(s.attempts, key)
	s.mu.Unlock()

	log.Info("verification code issued")

	return code, nil
}

// Verify гасит код при совпадении (single-use). Неверный ввод кода не
// расходует, но после maxAttempts неверных попыток код аннулируется.
func (s *Store) Verify(ctx context.Context, accountID uuid.UUID, input string, codeType models.CodeType) (bool, error) {
	const op = "Verification.Verify"

	log := s.log.With(
		slog.String("op", op),
		slog.String("accountID", accountID.String()),
	)

	key := cacheKey{accountID: accountID, codeType: codeType}

	s.mu.Lock()
	entry, cached := s.cache[key]
	if cached && s.now().After(entry.expiresAt) {
		s.dropEntryLocked(key)
		cached = false
	}
	if cached && entry.code == input {
		s.dropEntryLocked(key)
		s.mu.Unlock()

		if err := s.repo.MarkUsed(ctx, accountID, codeType); err != nil && !errors.Is(err, repository.ErrCodeNotFound) {
			log.Error("failed to mark code used", sl.Err(err))

			return false, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("verification code accepted")

		return true, nil
	}
	if cached {
		failed := s.registerFailureLocked(key)
		s.mu.Unlock()

		if failed {
			return false, s.invalidate(ctx, log, accountID, codeType)
		}

		return false, nil
	}
	s.mu.Unlock()

	// кэш пуст (например, после рестарта) — читаем durable-запись
	rec, err := s.repo.Unconsumed(ctx, accountID, codeType)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return false, nil
		}
		log.Error("failed to load code", sl.Err(err))

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if rec.Expired(s.now()) {
		if err := s.repo.Delete(ctx, accountID, codeType); err != nil {
			log.Warn("failed to delete expired code", sl.Err(err))
		}

		return false, nil
	}

	if bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(input)) != nil {
		s.mu.Lock()
		failed := s.registerFailureLocked(key)
		s.mu.Unlock()

		if failed {
			return false, s.invalidate(ctx, log, accountID, codeType)
		}

		return false, nil
	}

	if err := s.repo.MarkUsed(ctx, accountID, codeType); err != nil {
		log.Error("failed to mark code used", sl.Err(err))

		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("verification code accepted")

	return true, nil
}

// registerFailureLocked возвращает true, когда лимит попыток исчерпан.
func (s *Store) registerFailureLocked(key cacheKey) bool {
	s.attempts[key]++
	if s.attempts[key] < maxAttempts {
		return false
	}

	s.dropEntryLocked(key)

	return true
}

func (s *Store) invalidate(ctx context.Context, log *slog.Logger, accountID uuid.UUID, codeType models.CodeType) error {
	log.Warn("too many failed attempts, code invalidated")

	if err := s.repo.Delete(ctx, accountID, codeType); err != nil {
		log.Error("failed to invalidate code", sl.Err(err))
	}

	return nil
}

func (s *Store) dropEntryLocked(key cacheKey) {
	if entry, ok := s.cache[key]; ok && entry.timer != nil {
		entry.timer.Stop()
	}
	delete(s.cache, key)
	delete(s.attempts, key)
}

func (s *Store) evict(key cacheKey, entry *cacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.cache[key]; ok && current == entry {
		delete(s.cache, key)
		delete(s.attempts, key)
	}
}
