package models

import "time"

// Event types
const (
	EventTypeOrderPlaced           = "ORDER_PLACED"
	EventTypeOrderStatusChanged    = "ORDER_STATUS_CHANGED"
	EventTypeBookingCreated        = "BOOKING_CREATED"
	EventTypeBookingStatusChanged  = "BOOKING_STATUS_CHANGED"
	EventTypeRoomStatusChanged     = "ROOM_STATUS_CHANGED"
	EventTypeFolioChargeAdded      = "FOLIO_CHARGE_ADDED"
	EventTypeServiceRequestCreated = "SERVICE_REQUEST_CREATED"
	EventTypeServiceRequestClosed  = "SERVICE_REQUEST_RESOLVED"
	EventTypeLowStockDetected      = "LOW_STOCK_DETECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	PropertyID string    `json:"property_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after an order and its items are committed
type OrderPlacedEvent struct {
	BaseEvent
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// OrderStatusChangedEvent published on every order transition
type OrderStatusChangedEvent struct {
	BaseEvent
	Order      Order  `json:"order"`
	FromStatus string `json:"from_status"`
}

// BookingCreatedEvent published when a booking is stored
type BookingCreatedEvent struct {
	BaseEvent
	Booking      Booking `json:"booking"`
	PropertyName string  `json:"property_name"`
	RoomNumber   string  `json:"room_number"`
}

// BookingStatusChangedEvent carries the booking and, when a side effect ran, the room
type BookingStatusChangedEvent struct {
	BaseEvent
	Booking    Booking `json:"booking"`
	FromStatus string  `json:"from_status"`
	Room       *Room   `json:"room,omitempty"`
}

// RoomStatusChangedEvent published on manual room status changes
type RoomStatusChangedEvent struct {
	BaseEvent
	Room       Room   `json:"room"`
	FromStatus string `json:"from_status"`
}

// FolioChargeAddedEvent published after a charge and the recomputed total commit
type FolioChargeAddedEvent struct {
	BaseEvent
	Folio Folio     `json:"folio"`
	Item  FolioItem `json:"item"`
}

// ServiceRequestEvent published when a request is created or resolved
type ServiceRequestEvent struct {
	BaseEvent
	Request      ServiceRequest `json:"request"`
	ContactPhone string         `json:"contact_phone,omitempty"`
}

// LowStockDetectedEvent published when a stock edit crosses the threshold
type LowStockDetectedEvent struct {
	BaseEvent
	Item     InventoryItem `json:"item"`
	Urgency  string        `json:"urgency"`
	Shortage float64       `json:"shortage"`
}
