package repositories

import (
	"context"
	"sync"

	"phonegate/internal/models"
)

// MemoryVerificationStore is a VerificationStore for single-process deployments
// and local development. Every method holds the mutex for its whole body, which
// gives the same match-then-set atomicity as the SQL statements.
type MemoryVerificationStore struct {
	mu     sync.Mutex
	rows   []models.PhoneVerification
	nextID int64
}

func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{}
}

func (m *MemoryVerificationStore) latest(phone string) int {
	idx := -1
	for i, row := range m.rows {
		if row.Phone != phone {
			continue
		}
		if idx < 0 || row.CreatedAt > m.rows[idx].CreatedAt ||
			(row.CreatedAt == m.rows[idx].CreatedAt && row.ID > m.rows[idx].ID) {
			idx = i
		}
	}
	return idx
}

func (m *MemoryVerificationStore) GetLatest(_ context.Context, phone string) (*models.PhoneVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.latest(phone)
	if i < 0 {
		return nil, nil
	}
	v := m.rows[i]
	return &v, nil
}

func (m *MemoryVerificationStore) Insert(_ context.Context, phone, code string, status models.VerificationStatus, createdAt int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append(m.rows, models.PhoneVerification{
		ID:        m.nextID,
		Phone:     phone,
		Code:      code,
		Status:    status,
		CreatedAt: createdAt,
	})
	return m.nextID, nil
}

func (m *MemoryVerificationStore) UpdateStatus(_ context.Context, phone, code string, status models.VerificationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.latest(phone)
	if i < 0 || m.rows[i].Code != code {
		return false, nil
	}
	m.rows[i].Status = status
	return true, nil
}

func (m *MemoryVerificationStore) UpdateCode(_ context.Context, phone, code string, createdAt int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.latest(phone)
	if i < 0 {
		return false, nil
	}
	m.rows[i].Code = code
	m.rows[i].CreatedAt = createdAt
	return true, nil
}

// Count returns how many rows exist for phone, historical ones included.
func (m *MemoryVerificationStore) Count(phone string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.Phone == phone {
			n++
		}
	}
	return n
}
