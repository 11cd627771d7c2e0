package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"phonegate/internal/models"
	"phonegate/internal/repositories"
	"phonegate/internal/sms"
)

type sentMessage struct {
	Phone, Text string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(ctx context.Context, phone, message string) (sms.DeliveryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{phone, message})
	if f.err != nil {
		return sms.DeliveryResult{}, f.err
	}
	return sms.DeliveryResult{Delivered: true, ProviderMessageID: "msg-1"}, nil
}

func (f *fakeSender) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

var errDown = errors.Join(repositories.ErrStoreUnavailable, errors.New("connection refused"))

// flakyStore wraps the memory store; failing methods return errDown and
// afterGetLatest runs between a read and whatever the caller does next.
type flakyStore struct {
	*repositories.MemoryVerificationStore
	failGet        bool
	failWrite      bool
	afterGetLatest func()
}

func (s *flakyStore) GetLatest(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	if s.failGet {
		return nil, errDown
	}
	rec, err := s.MemoryVerificationStore.GetLatest(ctx, phone)
	if s.afterGetLatest != nil {
		hook := s.afterGetLatest
		s.afterGetLatest = nil
		hook()
	}
	return rec, err
}

func (s *flakyStore) Insert(ctx context.Context, phone, code string, status models.VerificationStatus, createdAt int64) (int64, error) {
	if s.failWrite {
		return 0, errDown
	}
	return s.MemoryVerificationStore.Insert(ctx, phone, code, status, createdAt)
}

func (s *flakyStore) UpdateCode(ctx context.Context, phone, code string, createdAt int64) (bool, error) {
	if s.failWrite {
		return false, errDown
	}
	return s.MemoryVerificationStore.UpdateCode(ctx, phone, code, createdAt)
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryVerificationStore: repositories.NewMemoryVerificationStore()}
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestIssuer(t *testing.T, store repositories.VerificationStore, sender sms.Sender) *CodeIssuer {
	t.Helper()
	iss := NewCodeIssuer(store, sender, repositories.NewMemoryLocker(), "tr", time.Second, zap.NewNop())
	iss.Now = func() time.Time { return fixedNow }
	return iss
}

func strPtr(s string) *string { return &s }
