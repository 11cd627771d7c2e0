package services

import (
	"errors"

	"phonegate/internal/repositories"
)

var (
	// ErrStoreUnavailable is the repositories sentinel, so errors.Is works on
	// errors from either layer.
	ErrStoreUnavailable = repositories.ErrStoreUnavailable
	ErrNoRecord         = errors.New("verification code not found")
	ErrMismatch         = errors.New("verification code mismatch")
	ErrDeliveryFailure  = errors.New("sms delivery failed")
	ErrNoPhone          = errors.New("phone number required")
	ErrPhoneTaken       = errors.New("phone number belongs to another account")
	ErrUserNotFound     = repositories.ErrUserNotFound
)
