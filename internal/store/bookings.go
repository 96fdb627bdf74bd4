package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"zamora/internal/models"
)

// ErrRoomUnavailable is returned when a booking overlaps another live booking.
var ErrRoomUnavailable = fmt.Errorf("room already booked for these dates: %w", ErrDuplicate)

// CreateBooking inserts a booking after checking, under a lock on the room, that
// no other non-cancelled booking overlaps the stay.
func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var roomID string
		if err := tx.GetContext(ctx, &roomID,
			"SELECT id FROM rooms WHERE id = $1 AND property_id = $2 FOR UPDATE", b.RoomID, b.PropertyID); err != nil {
			return notFound(err, "room", b.RoomID)
		}

		var overlapping bool
		err := tx.GetContext(ctx, &overlapping, `
			SELECT EXISTS(
				SELECT 1 FROM bookings
				WHERE room_id = $1 AND status NOT IN ('cancelled', 'checked_out')
				  AND check_in < $3 AND check_out > $2)`,
			b.RoomID, b.CheckIn, b.CheckOut)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlapping {
			return ErrRoomUnavailable
		}

		query := `
			INSERT INTO bookings (id, property_id, room_id, guest_id, guest_name, guest_phone, check_in, check_out, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at`
		return tx.QueryRowxContext(ctx, query,
			b.ID, b.PropertyID, b.RoomID, b.GuestID, b.GuestName, b.GuestPhone, b.CheckIn, b.CheckOut, b.Status).
			Scan(&b.CreatedAt, &b.UpdatedAt)
	})
}

// GetBooking retrieves a booking by ID
func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.GetContext(ctx, &b, "SELECT * FROM bookings WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

// ListBookings returns the bookings of a property, optionally filtered by status
func (s *Store) ListBookings(ctx context.Context, propertyID, status string) ([]models.Booking, error) {
	query := "SELECT * FROM bookings WHERE property_id = $1"
	args := []any{propertyID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY check_in DESC"

	bookings := []models.Booking{}
	err := s.db.SelectContext(ctx, &bookings, query, args...)
	return bookings, err
}

// BookingTransition is the outcome of TransitionBooking.
type BookingTransition struct {
	Booking    models.Booking
	FromStatus string
	Room       *models.Room
}

// TransitionBooking moves a booking to status and applies the room side effect
// in the same transaction, so the two rows never disagree.
func (s *Store) TransitionBooking(ctx context.Context, bookingID, status string) (*BookingTransition, error) {
	var result BookingTransition
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var b models.Booking
		if err := tx.GetContext(ctx, &b, "SELECT * FROM bookings WHERE id = $1 FOR UPDATE", bookingID); err != nil {
			return notFound(err, "booking", bookingID)
		}
		if !models.BookingTransitions.Allowed(b.Status, status) {
			return &TransitionError{Entity: "booking", From: b.Status, To: status}
		}
		result.FromStatus = b.Status

		if err := tx.GetContext(ctx, &b,
			"UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", status, bookingID); err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		result.Booking = b

		roomStatus, ok := models.RoomStatusForBooking(status)
		if !ok {
			return nil
		}
		if status == models.BookingStatusCancelled {
			// a guest still checked in keeps the room occupied
			var held bool
			if err := tx.GetContext(ctx, &held, `
				SELECT EXISTS(
					SELECT 1 FROM bookings
					WHERE room_id = $1 AND id <> $2 AND status = 'checked_in')`,
				b.RoomID, bookingID); err != nil {
				return fmt.Errorf("check room occupancy: %w", err)
			}
			if held {
				return nil
			}
		}
		var room models.Room
		if err := tx.GetContext(ctx, &room,
			"UPDATE rooms SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", roomStatus, b.RoomID); err != nil {
			return notFound(err, "room", b.RoomID)
		}
		result.Room = &room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
