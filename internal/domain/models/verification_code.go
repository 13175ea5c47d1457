package models

import (
	"time"

	"github.com/google/uuid"
)

type CodeType string

const (
	CodeTypeLogin CodeType = "login"
)

// VerificationCode — durable-запись одноразового кода.
// Сам код никогда не сохраняется в открытом виде.
type VerificationCode struct {
	AccountID uuid.UUID
	CodeHash  []byte
	Type      CodeType
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
