package realtime

import (
	"encoding/json"
	"fmt"

	"zamora/internal/models"
)

// ChangesFor converts a domain event into the row changes it represents.
// Unknown event types yield no change.
func ChangesFor(base models.BaseEvent, payload []byte) ([]Change, error) {
	change := func(table, typ, id, propertyID string, record any) Change {
		return Change{
			Table:      table,
			Type:       typ,
			ID:         id,
			PropertyID: propertyID,
			Record:     record,
			EventID:    base.EventID,
			Timestamp:  base.Timestamp,
		}
	}

	switch base.EventType {
	case models.EventTypeOrderPlaced:
		var e models.OrderPlacedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		record := struct {
			models.Order
			Items []models.OrderItem `json:"items"`
		}{e.Order, e.Items}
		return []Change{change("orders", ChangeInsert, e.Order.ID, e.Order.PropertyID, record)}, nil

	case models.EventTypeOrderStatusChanged:
		var e models.OrderStatusChangedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		return []Change{change("orders", ChangeUpdate, e.Order.ID, e.Order.PropertyID, e.Order)}, nil

	case models.EventTypeBookingCreated:
		var e models.BookingCreatedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		return []Change{change("bookings", ChangeInsert, e.Booking.ID, e.Booking.PropertyID, e.Booking)}, nil

	case models.EventTypeBookingStatusChanged:
		var e models.BookingStatusChangedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		changes := []Change{change("bookings", ChangeUpdate, e.Booking.ID, e.Booking.PropertyID, e.Booking)}
		if e.Room != nil {
			changes = append(changes, change("rooms", ChangeUpdate, e.Room.ID, e.Room.PropertyID, e.Room))
		}
		return changes, nil

	case models.EventTypeRoomStatusChanged:
		var e models.RoomStatusChangedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		return []Change{change("rooms", ChangeUpdate, e.Room.ID, e.Room.PropertyID, e.Room)}, nil

	case models.EventTypeFolioChargeAdded:
		var e models.FolioChargeAddedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		return []Change{
			change("folio_items", ChangeInsert, e.Item.ID, e.Folio.PropertyID, e.Item),
			change("folios", ChangeUpdate, e.Folio.ID, e.Folio.PropertyID, e.Folio),
		}, nil

	case models.EventTypeServiceRequestCreated, models.EventTypeServiceRequestClosed:
		var e models.ServiceRequestEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		typ := ChangeUpdate
		if base.EventType == models.EventTypeServiceRequestCreated {
			typ = ChangeInsert
		}
		return []Change{change("service_requests", typ, e.Request.ID, e.Request.PropertyID, e.Request)}, nil

	case models.EventTypeLowStockDetected:
		var e models.LowStockDetectedEvent
		if err := decode(payload, &e); err != nil {
			return nil, err
		}
		return []Change{change("inventory_items", ChangeUpdate, e.Item.ID, e.Item.PropertyID, e.Item)}, nil
	}
	return nil, nil
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return nil
}
