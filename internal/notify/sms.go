package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrSMSDisabled is returned when no SMS provider is configured.
var ErrSMSDisabled = errors.New("sms provider not configured")

// smsRequest is the provider's send-message body
type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Text string `json:"text"`
}

// smsResponse is the provider's reply
type smsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SMSClient sends text messages through the SMS provider's REST API
type SMSClient struct {
	httpClient *resty.Client
	sender     string
	enabled    bool
	logger     *zap.Logger
}

// NewSMSClient creates an SMS client. An empty baseURL yields a disabled client.
func NewSMSClient(baseURL, apiKey, sender string, logger *zap.Logger) *SMSClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SMSClient{
		httpClient: client,
		sender:     sender,
		enabled:    baseURL != "",
		logger:     logger,
	}
}

// Send delivers text to the phone number to
func (c *SMSClient) Send(ctx context.Context, to, text string) error {
	if !c.enabled {
		return ErrSMSDisabled
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("sms: empty recipient")
	}

	var response smsResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(smsRequest{To: to, From: c.sender, Text: text}).
		SetResult(&response).
		SetError(&response).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("failed to call SMS API: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("SMS API error: %s (status: %d)", response.Error, resp.StatusCode())
	}

	c.logger.Debug("SMS sent", zap.String("message_id", response.ID), zap.String("status", response.Status))
	return nil
}
