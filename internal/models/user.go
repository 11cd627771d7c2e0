package models

import "strings"

// AnonymousUserID is what identity resolution yields for requests without a token.
const AnonymousUserID = 0

type User struct {
	ID          int     `json:"id"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	RoleID      int     `json:"role_id"`
}

// Phone returns the normalized phone number and whether one is on file.
func (u *User) Phone() (string, bool) {
	if u == nil || u.PhoneNumber == nil {
		return "", false
	}
	p := NormalizePhone(*u.PhoneNumber)
	return p, p != ""
}

// NormalizePhone drops formatting characters: "+90 (555) 111-22-22" -> "+905551112222".
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// MaskPhone keeps the last four digits: "5551112222" -> "******2222".
func MaskPhone(phone string) string {
	r := []rune(phone)
	if len(r) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
