package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

type VerifyOutcome int

const (
	VerifyNoRecord VerifyOutcome = iota
	VerifyMismatch
	VerifySuccess
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyNoRecord:
		return "no_record"
	case VerifyMismatch:
		return "mismatch"
	case VerifySuccess:
		return "success"
	}
	return "unknown"
}

// Err maps a non-success outcome onto its error kind, nil on success.
func (o VerifyOutcome) Err() error {
	switch o {
	case VerifySuccess:
		return nil
	case VerifyNoRecord:
		return ErrNoRecord
	}
	return ErrMismatch
}

type OTPVerifier struct {
	Store repositories.VerificationStore
	log   *zap.Logger
}

func NewOTPVerifier(store repositories.VerificationStore, logger *zap.Logger) *OTPVerifier {
	return &OTPVerifier{Store: store, log: logger}
}

// Verify checks submitted against the newest code for phone. The status flip
// is conditional on the code still being the newest row's code; if a resend
// rotated it in between, the update matches nothing and the result is
// VerifyMismatch. Status is only changed on VerifySuccess.
func (v *OTPVerifier) Verify(ctx context.Context, phone, submitted string) (VerifyOutcome, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return VerifyNoRecord, ErrNoPhone
	}

	rec, err := v.Store.GetLatest(ctx, phone)
	if err != nil {
		return VerifyNoRecord, fmt.Errorf("%w: verify lookup: %w", ErrStoreUnavailable, err)
	}
	if !rec.HasCode() {
		return VerifyNoRecord, nil
	}

	stored := strings.TrimSpace(rec.Code)
	entered := strings.TrimSpace(submitted)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(entered)) != 1 {
		v.log.Info("Verification code mismatch", zap.String("phone", phone))
		return VerifyMismatch, nil
	}

	ok, err := v.Store.UpdateStatus(ctx, phone, rec.Code, models.StatusVerified)
	if err != nil {
		return VerifyNoRecord, fmt.Errorf("%w: mark verified: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		v.log.Warn("Code rotated before status update", zap.String("phone", phone))
		return VerifyMismatch, nil
	}

	v.log.Info("Phone number verified", zap.String("phone", phone))
	return VerifySuccess, nil
}
