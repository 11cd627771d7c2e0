package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+905551112222", NormalizePhone(" +90 (555) 111-22-22 "))
	assert.Equal(t, "5551112222", NormalizePhone("555.111.2222"))
	assert.Equal(t, "", NormalizePhone(" - "))
}

func TestUserPhone(t *testing.T) {
	var nilUser *User
	_, ok := nilUser.Phone()
	assert.False(t, ok)

	blank := "  "
	_, ok = (&User{PhoneNumber: &blank}).Phone()
	assert.False(t, ok)

	raw := "555 111 2222"
	p, ok := (&User{PhoneNumber: &raw}).Phone()
	assert.True(t, ok)
	assert.Equal(t, "5551112222", p)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "******2222", MaskPhone("5551112222"))
	assert.Equal(t, "1234", MaskPhone("1234"))
}

func TestPhoneVerificationNilSafe(t *testing.T) {
	var rec *PhoneVerification
	assert.False(t, rec.IsVerified())
	assert.False(t, rec.HasCode())

	rec = &PhoneVerification{Code: "123456", Status: StatusVerified}
	assert.True(t, rec.IsVerified())
	assert.True(t, rec.HasCode())
	assert.Equal(t, "verified", rec.Status.String())
	assert.Equal(t, "unverified", StatusUnverified.String())
}
