package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"zamora/internal/models"
)

// CreateRoom inserts a room; a number already used at the property yields ErrDuplicate.
func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, property_id, room_type_id, number, status, base_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		room.ID, room.PropertyID, room.RoomTypeID, room.Number, room.Status, room.BasePrice).
		Scan(&room.CreatedAt, &room.UpdatedAt)
	if uniqueViolation(err) {
		return fmt.Errorf("room number %q: %w", room.Number, ErrDuplicate)
	}
	return err
}

// GetRoom retrieves a room by ID
func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := s.db.GetContext(ctx, &room, "SELECT * FROM rooms WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

// ListRooms returns the rooms of a property, optionally filtered by status
func (s *Store) ListRooms(ctx context.Context, propertyID, status string) ([]models.Room, error) {
	query := "SELECT * FROM rooms WHERE property_id = $1"
	args := []any{propertyID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY number"

	rooms := []models.Room{}
	err := s.db.SelectContext(ctx, &rooms, query, args...)
	return rooms, err
}

// TransitionRoom moves a room to status when the room state machine allows it.
// It returns the room as it was before the change.
func (s *Store) TransitionRoom(ctx context.Context, roomID, status string) (*models.Room, error) {
	var before models.Room
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &before, "SELECT * FROM rooms WHERE id = $1 FOR UPDATE", roomID); err != nil {
			return notFound(err, "room", roomID)
		}
		if !models.RoomTransitions.Allowed(before.Status, status) {
			return &TransitionError{Entity: "room", From: before.Status, To: status}
		}
		return setRoomStatus(ctx, tx, roomID, status)
	})
	if err != nil {
		return nil, err
	}
	return &before, nil
}

func setRoomStatus(ctx context.Context, tx *sqlx.Tx, roomID, status string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rooms SET status = $1, updated_at = NOW() WHERE id = $2", status, roomID)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	return requireRow(res, "room", roomID)
}
