package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"

	"phonegate/internal/i18n"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
	"phonegate/internal/sms"
)

const (
	codeMin = 100000
	codeMax = 999999

	defaultIssueLockTTL = 10 * time.Second
	leaseRetryInterval  = 20 * time.Millisecond
)

type IssueOutcome struct {
	Code      string
	Delivered bool
	MessageID string
}

// CodeIssuer creates or rotates a phone's code and sends it once.
type CodeIssuer struct {
	Store   repositories.VerificationStore
	Sender  sms.Sender
	Locker  repositories.Locker
	Now     func() time.Time
	Lang    string
	LockTTL time.Duration

	rand io.Reader
	log  *zap.Logger
}

func NewCodeIssuer(
	store repositories.VerificationStore,
	sender sms.Sender,
	locker repositories.Locker,
	lang string,
	lockTTL time.Duration,
	logger *zap.Logger,
) *CodeIssuer {
	if lockTTL <= 0 {
		lockTTL = defaultIssueLockTTL
	}
	return &CodeIssuer{
		Store:   store,
		Sender:  sender,
		Locker:  locker,
		Now:     time.Now,
		Lang:    lang,
		LockTTL: lockTTL,
		rand:    rand.Reader,
		log:     logger,
	}
}

// generateCode draws uniformly from 100000–999999.
func generateCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Issue is the resend path: a fresh code replaces the newest row's code in
// place (status untouched), or a new UNVERIFIED row is created when the phone
// has none. It holds the same per-phone lease as EnsureIssued, waiting for it
// when a first-touch issuance is in flight, so the two never both insert.
// Delivery failure is reported through Delivered, not as an error.
func (s *CodeIssuer) Issue(ctx context.Context, phone string) (IssueOutcome, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return IssueOutcome{}, ErrNoPhone
	}

	release, err := s.waitLease(ctx, phone)
	if err != nil {
		return IssueOutcome{}, err
	}
	if release != nil {
		defer release()
	}

	existing, err := s.Store.GetLatest(ctx, phone)
	if err != nil {
		return IssueOutcome{}, fmt.Errorf("%w: issue lookup: %w", ErrStoreUnavailable, err)
	}
	return s.issue(ctx, phone, existing)
}

// waitLease polls for the issuance lease until it is free, ctx ends, or one
// LockTTL has passed (any holder's lease has expired by then). A nil release
// with a nil error means the caller proceeds without the lease.
func (s *CodeIssuer) waitLease(ctx context.Context, phone string) (func(), error) {
	deadline := time.Now().Add(s.LockTTL)
	for {
		release, ok, err := s.Locker.TryLock(ctx, leaseKey(phone), s.LockTTL)
		if err != nil {
			s.log.Warn("Issue lock unavailable, issuing without it", zap.String("phone", phone), zap.Error(err))
			return nil, nil
		}
		if ok {
			return release, nil
		}
		if time.Now().After(deadline) {
			s.log.Warn("Issue lock still held, issuing without it", zap.String("phone", phone))
			return nil, nil
		}

		t := time.NewTimer(leaseRetryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("wait for issue lock: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func leaseKey(phone string) string {
	return "issue:" + phone
}

// EnsureIssued is the first-touch path used by the gate. Under a short
// per-phone lease it re-reads the newest row and issues only if there is
// still none, so concurrent first requests create one row and send one SMS.
// issued=false means another request is issuing or a row already exists.
func (s *CodeIssuer) EnsureIssued(ctx context.Context, phone string) (IssueOutcome, bool, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return IssueOutcome{}, false, ErrNoPhone
	}

	release, ok, err := s.Locker.TryLock(ctx, leaseKey(phone), s.LockTTL)
	switch {
	case err != nil:
		// Without the lease a duplicate send is possible, but the user still
		// gets a code and stays gated.
		s.log.Warn("Issue lock unavailable, issuing without it", zap.String("phone", phone), zap.Error(err))
	case !ok:
		return IssueOutcome{}, false, nil
	default:
		defer release()
	}

	existing, err := s.Store.GetLatest(ctx, phone)
	if err != nil {
		return IssueOutcome{}, false, fmt.Errorf("%w: first-touch lookup: %w", ErrStoreUnavailable, err)
	}
	if existing != nil {
		return IssueOutcome{}, false, nil
	}
	out, err := s.issue(ctx, phone, existing)
	if err != nil {
		return IssueOutcome{}, false, err
	}
	return out, true, nil
}

func (s *CodeIssuer) issue(ctx context.Context, phone string, existing *models.PhoneVerification) (IssueOutcome, error) {
	code, err := generateCode(s.rand)
	if err != nil {
		return IssueOutcome{}, err
	}
	now := s.Now().Unix()

	if existing != nil {
		updated, err := s.Store.UpdateCode(ctx, phone, code, now)
		if err != nil {
			return IssueOutcome{}, fmt.Errorf("%w: rotate code: %w", ErrStoreUnavailable, err)
		}
		if updated {
			s.log.Info("Verification code rotated", zap.String("phone", phone))
			return s.deliver(ctx, phone, code), nil
		}
		// row disappeared between read and update; fall through to insert
	}

	id, err := s.Store.Insert(ctx, phone, code, models.StatusUnverified, now)
	if err != nil {
		return IssueOutcome{}, fmt.Errorf("%w: insert code: %w", ErrStoreUnavailable, err)
	}
	s.log.Info("Verification record created", zap.String("phone", phone), zap.Int64("id", id))
	return s.deliver(ctx, phone, code), nil
}

// deliver makes exactly one send attempt. The persisted code stays valid
// whatever the outcome.
func (s *CodeIssuer) deliver(ctx context.Context, phone, code string) IssueOutcome {
	out := IssueOutcome{Code: code}
	text := i18n.Printer(s.Lang).Sprintf(i18n.MsgSMSCode, code)

	res, err := s.Sender.Send(ctx, phone, text)
	if err == nil && !res.Delivered {
		err = errors.New("provider reported not delivered")
	}
	if err != nil {
		s.log.Error("Failed to deliver verification code",
			zap.String("phone", phone),
			zap.Error(fmt.Errorf("%w: %w", ErrDeliveryFailure, err)))
		return out
	}

	out.Delivered = true
	out.MessageID = res.ProviderMessageID
	s.log.Info("Verification code sent", zap.String("phone", phone), zap.String("messageID", res.ProviderMessageID))
	return out
}
