package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/store"
	"zamora/internal/util"
)

// RoomService manages the rooms of a property
type RoomService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewRoomService creates a new room service
func NewRoomService(store *store.Store, eventPublisher *broker.EventPublisher) *RoomService {
	return &RoomService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateRoomRequest represents a new room
type CreateRoomRequest struct {
	Number     string       `json:"number" binding:"required"`
	RoomTypeID *string      `json:"room_type_id,omitempty"`
	BasePrice  models.Money `json:"base_price"`
}

// CreateRoom adds a room; numbers are unique within a property
func (s *RoomService) CreateRoom(ctx context.Context, propertyID string, req *CreateRoomRequest) (*models.Room, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, invalid("number is required")
	}
	if req.BasePrice < 0 {
		return nil, invalid("base_price cannot be negative")
	}

	room := &models.Room{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		RoomTypeID: req.RoomTypeID,
		Number:     number,
		Status:     models.RoomStatusAvailable,
		BasePrice:  req.BasePrice,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Room created", zap.String("room_id", room.ID), zap.String("number", number))
	return room, nil
}

// ListRooms returns the rooms of a property
func (s *RoomService) ListRooms(ctx context.Context, propertyID, status string) ([]models.Room, error) {
	if status != "" && !models.RoomTransitions.Known(status) {
		return nil, invalid("unknown room status %q", status)
	}
	return s.store.ListRooms(ctx, propertyID, status)
}

// GetRoom retrieves a room by ID
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.store.GetRoom(ctx, roomID)
}

// UpdateStatus applies a manual housekeeping or maintenance status change
func (s *RoomService) UpdateStatus(ctx context.Context, roomID, status string) (*models.Room, error) {
	if !models.RoomTransitions.Known(status) {
		return nil, invalid("unknown room status %q", status)
	}

	before, err := s.store.TransitionRoom(ctx, roomID, status)
	if err != nil {
		return nil, translate(err)
	}
	room := *before
	room.Status = status

	s.logger.Info("Room status changed",
		zap.String("room_id", roomID),
		zap.String("from", before.Status),
		zap.String("to", status))

	if err := s.eventPublisher.PublishRoomStatusChanged(ctx, &room, before.Status); err != nil {
		s.logger.Error("Failed to publish ROOM_STATUS_CHANGED event", zap.Error(err))
	}
	return &room, nil
}
