package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"phonegate/internal/models"
)

// VerificationStore keeps verification rows keyed by phone.
// UpdateStatus and UpdateCode are single conditional statements: they touch only
// the newest row for the phone and report whether anything changed.
type VerificationStore interface {
	GetLatest(ctx context.Context, phone string) (*models.PhoneVerification, error)
	Insert(ctx context.Context, phone, code string, status models.VerificationStatus, createdAt int64) (int64, error)
	UpdateStatus(ctx context.Context, phone, code string, status models.VerificationStatus) (bool, error)
	UpdateCode(ctx context.Context, phone, code string, createdAt int64) (bool, error)
}

type PhoneVerificationRepository struct {
	DB *sql.DB
}

func NewPhoneVerificationRepository(db *sql.DB) *PhoneVerificationRepository {
	return &PhoneVerificationRepository{DB: db}
}

const latestRowID = `
	SELECT id FROM sms_phone_number_verification
	WHERE phone = $1
	ORDER BY created DESC, id DESC
	LIMIT 1`

// Migrate creates the table once at deploy time; the request path assumes it exists.
func (r *PhoneVerificationRepository) Migrate(ctx context.Context) error {
	const q = `
		CREATE TABLE IF NOT EXISTS sms_phone_number_verification (
			id      BIGSERIAL PRIMARY KEY,
			phone   TEXT     NOT NULL,
			code    TEXT     NOT NULL,
			status  SMALLINT NOT NULL DEFAULT 0,
			created BIGINT   NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sms_phone_number_verification_phone_created
			ON sms_phone_number_verification (phone, created DESC);
	`
	if _, err := r.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("phone_verification migrate: %w", wrapUnavailable(err))
	}
	return nil
}

// GetLatest returns the newest row by created (id breaks ties), nil when the phone has none.
func (r *PhoneVerificationRepository) GetLatest(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	const q = `
		SELECT id, phone, code, status, created
		FROM sms_phone_number_verification
		WHERE phone = $1
		ORDER BY created DESC, id DESC
		LIMIT 1
	`
	var v models.PhoneVerification
	err := r.DB.QueryRowContext(ctx, q, phone).Scan(&v.ID, &v.Phone, &v.Code, &v.Status, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("phone_verification latest: %w", wrapUnavailable(err))
	}
	return &v, nil
}

// Insert appends a row. Existing rows are never touched.
func (r *PhoneVerificationRepository) Insert(ctx context.Context, phone, code string, status models.VerificationStatus, createdAt int64) (int64, error) {
	const q = `
		INSERT INTO sms_phone_number_verification (phone, code, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := r.DB.QueryRowContext(ctx, q, phone, code, status, createdAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("phone_verification insert: %w", wrapUnavailable(err))
	}
	return id, nil
}

func (r *PhoneVerificationRepository) UpdateStatus(ctx context.Context, phone, code string, status models.VerificationStatus) (bool, error) {
	q := `
		UPDATE sms_phone_number_verification
		SET status = $3
		WHERE code = $2 AND id = (` + latestRowID + `)`
	res, err := r.DB.ExecContext(ctx, q, phone, code, status)
	if err != nil {
		return false, fmt.Errorf("phone_verification update status: %w", wrapUnavailable(err))
	}
	return affected(res)
}

// UpdateCode rotates the code of the newest row; status is left as is.
func (r *PhoneVerificationRepository) UpdateCode(ctx context.Context, phone, code string, createdAt int64) (bool, error) {
	q := `
		UPDATE sms_phone_number_verification
		SET code = $2, created = $3
		WHERE id = (` + latestRowID + `)`
	res, err := r.DB.ExecContext(ctx, q, phone, code, createdAt)
	if err != nil {
		return false, fmt.Errorf("phone_verification update code: %w", wrapUnavailable(err))
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
