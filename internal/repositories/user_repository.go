package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"phonegate/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory gives read access to the host application's users plus the one
// write the admin override needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	SetPhoneNumber(ctx context.Context, id int, phone string) error
	// PhoneInUse reports whether any user other than exceptID has phone on
	// file, comparing normalized numbers.
	PhoneInUse(ctx context.Context, phone string, exceptID int) (bool, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserDirectory {
	return &userRepository{DB: db}
}

// MigrateUsers creates the minimal users table this service reads, for
// deployments where the host does not own one yet.
func MigrateUsers(ctx context.Context, db *sql.DB) error {
	const q = `
		CREATE TABLE IF NOT EXISTS users (
			id           SERIAL PRIMARY KEY,
			phone_number TEXT,
			role_id      INT NOT NULL DEFAULT 0
		)
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("users migrate: %w", wrapUnavailable(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	const q = `SELECT id, phone_number, role_id FROM users WHERE id = $1`
	u := &models.User{}
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&u.ID, &phone, &u.RoleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user get: %w", wrapUnavailable(err))
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	return u, nil
}

func (r *userRepository) SetPhoneNumber(ctx context.Context, id int, phone string) error {
	var value sql.NullString
	if p := strings.TrimSpace(phone); p != "" {
		value = sql.NullString{String: p, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET phone_number = $2 WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("user set phone: %w", wrapUnavailable(err))
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) PhoneInUse(ctx context.Context, phone string, exceptID int) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE id <> $2
			  AND regexp_replace(phone_number, '[[:space:]().-]', '', 'g') = $1
		)
	`
	var inUse bool
	if err := r.DB.QueryRowContext(ctx, q, models.NormalizePhone(phone), exceptID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("user phone in use: %w", wrapUnavailable(err))
	}
	return inUse, nil
}

// MemoryUserDirectory backs local runs (users seeded from config) and tests.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[int]models.User
}

func NewMemoryUserDirectory(users ...models.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[int]models.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryUserDirectory) GetByID(_ context.Context, id int) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if u.PhoneNumber != nil {
		p := *u.PhoneNumber
		u.PhoneNumber = &p
	}
	return &u, nil
}

func (d *MemoryUserDirectory) SetPhoneNumber(_ context.Context, id int, phone string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if p := strings.TrimSpace(phone); p != "" {
		u.PhoneNumber = &p
	} else {
		u.PhoneNumber = nil
	}
	d.users[id] = u
	return nil
}

func (d *MemoryUserDirectory) PhoneInUse(_ context.Context, phone string, exceptID int) (bool, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return false, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, u := range d.users {
		if id == exceptID {
			continue
		}
		if p, ok := u.Phone(); ok && p == phone {
			return true, nil
		}
	}
	return false, nil
}
