package store

import (
	"context"

	"zamora/internal/models"
)

// SavePushSubscription registers a browser endpoint; re-registering the same
// endpoint moves it to the new user and keys.
func (s *Store) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, property_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id, property_id = EXCLUDED.property_id,
		    p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at`

	return s.db.QueryRowxContext(ctx, query,
		sub.ID, sub.UserID, sub.PropertyID, sub.Endpoint, sub.P256dh, sub.Auth).
		Scan(&sub.ID, &sub.CreatedAt)
}

// ListPushSubscriptions returns the endpoints of the given users
func (s *Store) ListPushSubscriptions(ctx context.Context, userIDs []string) ([]models.PushSubscription, error) {
	subs := []models.PushSubscription{}
	if len(userIDs) == 0 {
		return subs, nil
	}
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM push_subscriptions WHERE user_id = ANY($1)", pqStrings(userIDs))
	return subs, err
}

// DeletePushSubscription drops an endpoint the push service reported as gone
func (s *Store) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE endpoint = $1", endpoint)
	return err
}
