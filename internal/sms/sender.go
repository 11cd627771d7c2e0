// Package sms delivers text messages through HTTP SMS providers.
package sms

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("sms: no recipient")

type DeliveryResult struct {
	Delivered         bool
	ProviderMessageID string
}

// Sender makes one best-effort delivery attempt; it never retries.
type Sender interface {
	Send(ctx context.Context, phone, message string) (DeliveryResult, error)
}
