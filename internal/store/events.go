package store

import "context"

// IsEventProcessed checks if a consumer group has already handled an event
func (s *Store) IsEventProcessed(ctx context.Context, eventID, consumer string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1 AND consumer = $2)", eventID, consumer)
	return exists, err
}

// MarkEventProcessed records that a consumer group handled an event
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType, consumer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type, consumer) VALUES ($1, $2, $3) ON CONFLICT (event_id, consumer) DO NOTHING",
		eventID, eventType, consumer)
	return err
}
