package sms

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DryRunSender only logs. This is the one place the message text, code
// included, reaches the logs, so it must stay out of production configs.
type DryRunSender struct {
	Sender string
}

func (d DryRunSender) Send(_ context.Context, phone, message string) (DeliveryResult, error) {
	zap.L().Info("SMS dry-run",
		zap.String("phone", phone),
		zap.String("sender", d.Sender),
		zap.String("text", message))
	return DeliveryResult{Delivered: true, ProviderMessageID: "dry-run_" + uuid.NewString()}, nil
}
