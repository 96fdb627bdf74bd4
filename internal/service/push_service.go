package service

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"zamora/internal/models"
	"zamora/internal/store"
)

// PushService registers browser push endpoints
type PushService struct {
	store *store.Store
}

// NewPushService creates a new push service
func NewPushService(store *store.Store) *PushService {
	return &PushService{store: store}
}

// SubscribeRequest mirrors the browser PushSubscription JSON
type SubscribeRequest struct {
	Endpoint   string  `json:"endpoint" binding:"required"`
	PropertyID *string `json:"property_id,omitempty"`
	Keys       struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys"`
}

// Subscribe stores the endpoint for userID
func (s *PushService) Subscribe(ctx context.Context, userID string, req *SubscribeRequest) (*models.PushSubscription, error) {
	u, err := url.Parse(req.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, invalid("endpoint must be an https URL")
	}
	if req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return nil, invalid("keys.p256dh and keys.auth are required")
	}

	sub := &models.PushSubscription{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: req.PropertyID,
		Endpoint:   req.Endpoint,
		P256dh:     req.Keys.P256dh,
		Auth:       req.Keys.Auth,
	}
	if err := s.store.SavePushSubscription(ctx, sub); err != nil {
		return nil, translate(err)
	}
	return sub, nil
}
