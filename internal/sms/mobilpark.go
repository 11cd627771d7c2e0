package sms

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mobilParkURL = "http://otpservice.mobilpark.biz/http/SendMsg.aspx"

// MobilParkClient posts a form per recipient; a 200 answer counts as delivered.
// The provider returns no message id, so one is minted locally.
type MobilParkClient struct {
	Username string
	Password string
	From     string

	rest *resty.Client
	url  string
}

func NewMobilParkClient(username, password, from string, client *resty.Client) *MobilParkClient {
	return &MobilParkClient{Username: username, Password: password, From: from, rest: client, url: mobilParkURL}
}

func (c *MobilParkClient) Send(ctx context.Context, phone, message string) (DeliveryResult, error) {
	if strings.TrimSpace(phone) == "" {
		return DeliveryResult{}, ErrNoRecipient
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":    c.Username,
			"password":    c.Password,
			"to":          phone,
			"messageType": "sms",
			"text":        message,
			"from":        c.From,
		}).
		Post(c.url)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("mobilpark request: %w", err)
	}

	zap.L().Debug("MobilPark response",
		zap.Int("status", resp.StatusCode()),
		zap.String("body", resp.String()))

	if resp.StatusCode() != http.StatusOK {
		return DeliveryResult{}, fmt.Errorf("mobilpark http status %d", resp.StatusCode())
	}
	return DeliveryResult{Delivered: true, ProviderMessageID: "mobilpark_" + uuid.NewString()}, nil
}
