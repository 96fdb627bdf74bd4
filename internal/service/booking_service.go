package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/store"
	"zamora/internal/util"
)

// BookingService handles reservations and their effect on rooms
type BookingService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(store *store.Store, eventPublisher *broker.EventPublisher) *BookingService {
	return &BookingService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateBookingRequest represents a reservation request
type CreateBookingRequest struct {
	RoomID     string    `json:"room_id" binding:"required"`
	GuestName  string    `json:"guest_name" binding:"required"`
	GuestPhone string    `json:"guest_phone"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
}

// CreateBooking reserves a room. Staff bookings start confirmed; guest
// self-service bookings start pending.
func (s *BookingService) CreateBooking(ctx context.Context, propertyID, guestID string, confirmed bool, req *CreateBookingRequest) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CreateBooking")
	defer span.End()

	if strings.TrimSpace(req.GuestName) == "" {
		return nil, invalid("guest_name is required")
	}
	if !req.CheckOut.After(req.CheckIn) {
		return nil, invalid("check_out must be after check_in")
	}

	booking := &models.Booking{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		RoomID:     req.RoomID,
		GuestName:  strings.TrimSpace(req.GuestName),
		GuestPhone: strings.TrimSpace(req.GuestPhone),
		CheckIn:    req.CheckIn.UTC(),
		CheckOut:   req.CheckOut.UTC(),
		Status:     models.BookingStatusPending,
	}
	if confirmed {
		booking.Status = models.BookingStatusConfirmed
	}
	if guestID != "" {
		booking.GuestID = &guestID
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", booking.RoomID),
		zap.String("status", booking.Status))

	var propertyName, roomNumber string
	if p, err := s.store.GetProperty(ctx, propertyID); err == nil {
		propertyName = p.Name
	}
	if r, err := s.store.GetRoom(ctx, booking.RoomID); err == nil {
		roomNumber = r.Number
	}
	if err := s.eventPublisher.PublishBookingCreated(ctx, booking, propertyName, roomNumber); err != nil {
		s.logger.Error("Failed to publish BOOKING_CREATED event", zap.Error(err))
	}
	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

// ListBookings returns the bookings of a property
func (s *BookingService) ListBookings(ctx context.Context, propertyID, status string) ([]models.Booking, error) {
	if status != "" && !models.BookingTransitions.Known(status) {
		return nil, invalid("unknown booking status %q", status)
	}
	return s.store.ListBookings(ctx, propertyID, status)
}

// UpdateStatus moves a booking through its state machine; check-in, check-out
// and cancellation update the room in the same transaction.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, status string) (*store.BookingTransition, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.UpdateStatus")
	defer span.End()

	if !models.BookingTransitions.Known(status) {
		return nil, invalid("unknown booking status %q", status)
	}

	res, err := s.store.TransitionBooking(ctx, bookingID, status)
	if err != nil {
		return nil, translate(err)
	}

	util.BookingTransitionsTotal.WithLabelValues(status).Inc()
	fields := []zap.Field{
		zap.String("booking_id", bookingID),
		zap.String("from", res.FromStatus),
		zap.String("to", status),
	}
	if res.Room != nil {
		fields = append(fields, zap.String("room_id", res.Room.ID), zap.String("room_status", res.Room.Status))
	}
	s.logger.Info("Booking status changed", fields...)

	if err := s.eventPublisher.PublishBookingStatusChanged(ctx, &res.Booking, res.FromStatus, res.Room); err != nil {
		s.logger.Error("Failed to publish BOOKING_STATUS_CHANGED event", zap.Error(err))
	}
	return res, nil
}
