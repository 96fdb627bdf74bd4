package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"zamora/internal/models"
	"zamora/internal/util"
)

// EventWriter is the transport the publisher writes to. *Producer implements it.
type EventWriter interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	writer EventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(writer EventWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func newBase(eventType, propertyID string) models.BaseEvent {
	return models.BaseEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		PropertyID: propertyID,
		Timestamp:  time.Now().UTC(),
	}
}

// PublishOrderPlaced publishes ORDER_PLACED
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	event := &models.OrderPlacedEvent{
		BaseEvent: newBase(models.EventTypeOrderPlaced, order.PropertyID),
		Order:     *order,
		Items:     items,
	}
	return ep.writer.PublishEvent(ctx, "order-"+order.ID, event)
}

// PublishOrderStatusChanged publishes ORDER_STATUS_CHANGED
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, from string) error {
	event := &models.OrderStatusChangedEvent{
		BaseEvent:  newBase(models.EventTypeOrderStatusChanged, order.PropertyID),
		Order:      *order,
		FromStatus: from,
	}
	return ep.writer.PublishEvent(ctx, "order-"+order.ID, event)
}

// PublishBookingCreated publishes BOOKING_CREATED
func (ep *EventPublisher) PublishBookingCreated(ctx context.Context, booking *models.Booking, propertyName, roomNumber string) error {
	event := &models.BookingCreatedEvent{
		BaseEvent:    newBase(models.EventTypeBookingCreated, booking.PropertyID),
		Booking:      *booking,
		PropertyName: propertyName,
		RoomNumber:   roomNumber,
	}
	return ep.writer.PublishEvent(ctx, "booking-"+booking.ID, event)
}

// PublishBookingStatusChanged publishes BOOKING_STATUS_CHANGED
func (ep *EventPublisher) PublishBookingStatusChanged(ctx context.Context, booking *models.Booking, from string, room *models.Room) error {
	event := &models.BookingStatusChangedEvent{
		BaseEvent:  newBase(models.EventTypeBookingStatusChanged, booking.PropertyID),
		Booking:    *booking,
		FromStatus: from,
		Room:       room,
	}
	return ep.writer.PublishEvent(ctx, "booking-"+booking.ID, event)
}

// PublishRoomStatusChanged publishes ROOM_STATUS_CHANGED
func (ep *EventPublisher) PublishRoomStatusChanged(ctx context.Context, room *models.Room, from string) error {
	event := &models.RoomStatusChangedEvent{
		BaseEvent:  newBase(models.EventTypeRoomStatusChanged, room.PropertyID),
		Room:       *room,
		FromStatus: from,
	}
	return ep.writer.PublishEvent(ctx, "room-"+room.ID, event)
}

// PublishFolioChargeAdded publishes FOLIO_CHARGE_ADDED
func (ep *EventPublisher) PublishFolioChargeAdded(ctx context.Context, folio *models.Folio, item *models.FolioItem) error {
	event := &models.FolioChargeAddedEvent{
		BaseEvent: newBase(models.EventTypeFolioChargeAdded, folio.PropertyID),
		Folio:     *folio,
		Item:      *item,
	}
	return ep.writer.PublishEvent(ctx, "folio-"+folio.ID, event)
}

// PublishServiceRequest publishes SERVICE_REQUEST_CREATED or SERVICE_REQUEST_RESOLVED
func (ep *EventPublisher) PublishServiceRequest(ctx context.Context, eventType string, req *models.ServiceRequest, contactPhone string) error {
	event := &models.ServiceRequestEvent{
		BaseEvent:    newBase(eventType, req.PropertyID),
		Request:      *req,
		ContactPhone: contactPhone,
	}
	return ep.writer.PublishEvent(ctx, "service-request-"+req.ID, event)
}

// PublishLowStockDetected publishes LOW_STOCK_DETECTED
func (ep *EventPublisher) PublishLowStockDetected(ctx context.Context, item *models.InventoryItem, urgency string, shortage float64) error {
	event := &models.LowStockDetectedEvent{
		BaseEvent: newBase(models.EventTypeLowStockDetected, item.PropertyID),
		Item:      *item,
		Urgency:   urgency,
		Shortage:  shortage,
	}
	return ep.writer.PublishEvent(ctx, "inventory-"+item.ID, event)
}

// RawHandler receives an event with its envelope already decoded.
type RawHandler func(ctx context.Context, base models.BaseEvent, payload []byte) error

// EventHandler routes incoming events to the handlers registered per type
type EventHandler struct {
	handlers map[string]RawHandler
	fallback RawHandler
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{handlers: make(map[string]RawHandler)}
}

// Handle registers fn for one event type
func (eh *EventHandler) Handle(eventType string, fn RawHandler) {
	eh.handlers[eventType] = fn
}

// HandleAll registers fn for every event type without a dedicated handler
func (eh *EventHandler) HandleAll(fn RawHandler) {
	eh.fallback = fn
}

// Typed adapts fn to a RawHandler that decodes the payload into T.
func Typed[T any](fn func(context.Context, *T) error) RawHandler {
	return func(ctx context.Context, base models.BaseEvent, payload []byte) error {
		var event T
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to unmarshal %s event: %w", base.EventType, err)
		}
		return fn(ctx, &event)
	}
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	handler, ok := eh.handlers[baseEvent.EventType]
	if !ok {
		handler = eh.fallback
	}
	if handler == nil {
		logger.Debug("unhandled event type", zap.String("event_type", baseEvent.EventType))
		return nil
	}
	return handler(ctx, baseEvent, msg.Value)
}
