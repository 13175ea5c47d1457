package repository

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrSettingNotFound = errors.New("setting not found")
)
