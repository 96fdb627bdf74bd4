package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"zamora/internal/models"
)

// ErrSubscriptionGone is returned when the push service reports the endpoint
// no longer exists; the subscription should be deleted.
var ErrSubscriptionGone = errors.New("push subscription gone")

// ErrPushDisabled is returned when no VAPID keys are configured.
var ErrPushDisabled = errors.New("web push not configured")

// PushMessage is the payload the service worker receives
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	URL   string            `json:"url,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushSender delivers Web Push notifications signed with VAPID keys
type PushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient webpush.HTTPClient
}

// NewPushSender creates a sender. Empty keys yield a disabled sender.
func NewPushSender(publicKey, privateKey, subscriber string, ttlSeconds int) *PushSender {
	return &PushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: strings.TrimPrefix(subscriber, "mailto:"),
		ttl:        ttlSeconds,
		httpClient: http.DefaultClient,
	}
}

// Send encrypts msg for sub and posts it to the push service
func (p *PushSender) Send(ctx context.Context, sub models.PushSubscription, msg PushMessage) error {
	if p.publicKey == "" || p.privateKey == "" {
		return ErrPushDisabled
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, &webpush.Options{
		HTTPClient:      p.httpClient,
		Subscriber:      p.subscriber,
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		TTL:             p.ttl,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
