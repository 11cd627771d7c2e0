package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const mobizonURL = "https://api.mobizon.kz/service/message/sendsmsmessage"

type MobizonClient struct {
	APIKey string
	Sender string // optional alpha name
	Prefix string // prepended to every text, e.g. company name

	rest *resty.Client
	url  string
}

type mobizonResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func NewMobizonClient(apiKey, sender, prefix string, client *resty.Client) *MobizonClient {
	return &MobizonClient{APIKey: apiKey, Sender: sender, Prefix: prefix, rest: client, url: mobizonURL}
}

func (c *MobizonClient) Send(ctx context.Context, phone, message string) (DeliveryResult, error) {
	if strings.TrimSpace(phone) == "" {
		return DeliveryResult{}, ErrNoRecipient
	}
	text := message
	if c.Prefix != "" {
		text = c.Prefix + " " + message
	}

	form := map[string]string{
		"apiKey":    c.APIKey,
		"recipient": phone,
		"text":      text,
	}
	if c.Sender != "" {
		form["from"] = c.Sender
	}

	var result mobizonResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		ForceContentType("application/json").
		Post(c.url)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("mobizon request: %w", err)
	}
	if resp.IsError() {
		return DeliveryResult{}, fmt.Errorf("mobizon http status %d", resp.StatusCode())
	}
	if result.Code != 0 {
		return DeliveryResult{}, fmt.Errorf("mobizon returned error code %d: %s", result.Code, result.Message)
	}

	zap.L().Info("Mobizon accepted message",
		zap.String("phone", phone),
		zap.String("messageID", result.Data.MessageID))
	return DeliveryResult{Delivered: true, ProviderMessageID: result.Data.MessageID}, nil
}
