package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

// ProfileService handles the phone change a user makes for themselves.
// Clearing the number or taking over one that is already proven is left to
// administrators, otherwise the change would skip the gate.
type ProfileService struct {
	Users repositories.UserDirectory
	Store repositories.VerificationStore

	log *zap.Logger
}

func NewProfileService(users repositories.UserDirectory, store repositories.VerificationStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{Users: users, Store: store, log: logger}
}

// ChangePhone stores phone on userID. Re-submitting the current number is a
// no-op. A number on file for another user, or whose newest row is VERIFIED,
// is refused with ErrPhoneTaken.
func (s *ProfileService) ChangePhone(ctx context.Context, userID int, phone string) error {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return ErrNoPhone
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change phone: %w", err)
	}
	if current, ok := user.Phone(); ok && current == phone {
		return nil
	}

	inUse, err := s.Users.PhoneInUse(ctx, phone, userID)
	if err != nil {
		return fmt.Errorf("change phone: %w", err)
	}
	if inUse {
		s.log.Warn("Phone change refused, number on another account", zap.Int("userID", userID), zap.String("phone", phone))
		return ErrPhoneTaken
	}

	rec, err := s.Store.GetLatest(ctx, phone)
	if err != nil {
		return fmt.Errorf("%w: change phone lookup: %w", ErrStoreUnavailable, err)
	}
	if rec.IsVerified() {
		s.log.Warn("Phone change refused, number already verified", zap.Int("userID", userID), zap.String("phone", phone))
		return ErrPhoneTaken
	}

	if err := s.Users.SetPhoneNumber(ctx, userID, phone); err != nil {
		return fmt.Errorf("change phone: %w", err)
	}
	s.log.Info("Phone number changed", zap.Int("userID", userID), zap.String("phone", phone))
	return nil
}
