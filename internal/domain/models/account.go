package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	AccountStatusUnverified AccountStatus = "unverified"
	AccountStatusVerified   AccountStatus = "verified"
)

// Account — учётная запись преподавателя. ChatID == 0 означает,
// что Telegram ещё не привязан.
type Account struct {
	ID              uuid.UUID
	Login           string
	Name            string
	ChatID          int64
	Language        string
	Status          AccountStatus
	ProfilePhotoURL string
	ChatUsername    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Account) Linked() bool {
	return a.ChatID != 0
}
