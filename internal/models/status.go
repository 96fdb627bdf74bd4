package models

// Booking statuses
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusCheckedIn  = "checked_in"
	BookingStatusCheckedOut = "checked_out"
	BookingStatusCancelled  = "cancelled"
)

// Room statuses
const (
	RoomStatusAvailable   = "available"
	RoomStatusClean       = "clean"
	RoomStatusDirty       = "dirty"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
)

// Order statuses
const (
	OrderStatusPending      = "pending"
	OrderStatusPreparing    = "preparing"
	OrderStatusReady        = "ready"
	OrderStatusDelivered    = "delivered"
	OrderStatusCancelled    = "cancelled"
	OrderStatusPOSCompleted = "pos_completed"
)

// Folio statuses
const (
	FolioStatusOpen   = "open"
	FolioStatusClosed = "closed"
	FolioStatusPaid   = "paid"
)

// Service request statuses
const (
	ServiceRequestStatusPending  = "pending"
	ServiceRequestStatusResolved = "resolved"
)

// Transitions lists, for every known status, the statuses it may move to.
// A status with an empty list is terminal.
type Transitions map[string][]string

// Known reports whether status is part of the machine.
func (t Transitions) Known(status string) bool {
	_, ok := t[status]
	return ok
}

// Allowed reports whether from -> to is a legal move.
func (t Transitions) Allowed(from, to string) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

var BookingTransitions = Transitions{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusCheckedIn, BookingStatusCancelled},
	BookingStatusCheckedIn:  {BookingStatusCheckedOut},
	BookingStatusCheckedOut: {},
	BookingStatusCancelled:  {},
}

var RoomTransitions = Transitions{
	RoomStatusAvailable:   {RoomStatusClean, RoomStatusDirty, RoomStatusOccupied, RoomStatusMaintenance},
	RoomStatusClean:       {RoomStatusAvailable, RoomStatusDirty, RoomStatusOccupied, RoomStatusMaintenance},
	RoomStatusDirty:       {RoomStatusClean, RoomStatusMaintenance},
	RoomStatusOccupied:    {RoomStatusDirty, RoomStatusMaintenance},
	RoomStatusMaintenance: {RoomStatusAvailable, RoomStatusClean, RoomStatusDirty},
}

var OrderTransitions = Transitions{
	OrderStatusPending:      {OrderStatusPreparing, OrderStatusCancelled, OrderStatusPOSCompleted},
	OrderStatusPreparing:    {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:        {OrderStatusDelivered, OrderStatusCancelled, OrderStatusPOSCompleted},
	OrderStatusDelivered:    {OrderStatusPOSCompleted},
	OrderStatusCancelled:    {},
	OrderStatusPOSCompleted: {},
}

var FolioTransitions = Transitions{
	FolioStatusOpen:   {FolioStatusClosed, FolioStatusPaid},
	FolioStatusClosed: {FolioStatusOpen, FolioStatusPaid},
	FolioStatusPaid:   {},
}

var ServiceRequestTransitions = Transitions{
	ServiceRequestStatusPending:  {ServiceRequestStatusResolved},
	ServiceRequestStatusResolved: {},
}

// RoomStatusForBooking returns the status a room is forced into when its booking
// enters status. ok is false when the booking status has no room side effect.
func RoomStatusForBooking(status string) (roomStatus string, ok bool) {
	switch status {
	case BookingStatusCheckedIn:
		return RoomStatusOccupied, true
	case BookingStatusCheckedOut:
		return RoomStatusDirty, true
	case BookingStatusCancelled:
		return RoomStatusAvailable, true
	}
	return "", false
}
