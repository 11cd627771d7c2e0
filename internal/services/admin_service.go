package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

// AdminService lets administrators set a user's phone number and mark it
// verified without an SMS round trip.
type AdminService struct {
	Users repositories.UserDirectory
	Store repositories.VerificationStore
	Now   func() time.Time

	rand io.Reader
	log  *zap.Logger
}

func NewAdminService(users repositories.UserDirectory, store repositories.VerificationStore, logger *zap.Logger) *AdminService {
	return &AdminService{Users: users, Store: store, Now: time.Now, rand: rand.Reader, log: logger}
}

// OverridePhone stores phone on the user and appends a VERIFIED row for it.
// The row gets a fresh code that is never sent anywhere.
func (s *AdminService) OverridePhone(ctx context.Context, adminID, userID int, phone string) error {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return ErrNoPhone
	}
	if err := s.Users.SetPhoneNumber(ctx, userID, phone); err != nil {
		return fmt.Errorf("override phone: %w", err)
	}

	code, err := generateCode(s.rand)
	if err != nil {
		return err
	}
	if _, err := s.Store.Insert(ctx, phone, code, models.StatusVerified, s.Now().Unix()); err != nil {
		return fmt.Errorf("%w: override insert: %w", ErrStoreUnavailable, err)
	}

	s.log.Info("Phone number verified by administrator",
		zap.Int("adminID", adminID),
		zap.Int("userID", userID),
		zap.String("phone", phone))
	return nil
}
