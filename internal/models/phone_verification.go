package models

import "strings"

type VerificationStatus int

const (
	StatusUnverified VerificationStatus = 0
	StatusVerified   VerificationStatus = 1
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusUnverified:
		return "unverified"
	case StatusVerified:
		return "verified"
	}
	return "unknown"
}

// PhoneVerification is one row of sms_phone_number_verification.
// Several rows may exist per phone; the one with the greatest CreatedAt wins.
type PhoneVerification struct {
	ID        int64              `json:"id"`
	Phone     string             `json:"phone"`
	Code      string             `json:"-"` // never rendered
	Status    VerificationStatus `json:"status"`
	CreatedAt int64              `json:"created"` // unix seconds
}

func (v *PhoneVerification) IsVerified() bool {
	return v != nil && v.Status == StatusVerified
}

// HasCode reports whether the row carries a usable code.
func (v *PhoneVerification) HasCode() bool {
	return v != nil && strings.TrimSpace(v.Code) != ""
}
