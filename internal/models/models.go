package models

import (
	"time"

	"github.com/lib/pq"
)

// Property is a tenant: a hotel, lodge or restaurant.
type Property struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Type         string    `db:"type" json:"type"`
	ContactPhone string    `db:"contact_phone" json:"contact_phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Property types
const (
	PropertyTypeHotel      = "hotel"
	PropertyTypeLodge      = "lodge"
	PropertyTypeRestaurant = "restaurant"
)

// Profile mirrors an auth user with its platform role.
type Profile struct {
	ID         string  `db:"id" json:"id"`
	FullName   string  `db:"full_name" json:"full_name"`
	Phone      string  `db:"phone" json:"phone"`
	Role       string  `db:"role" json:"role"`
	PropertyID *string `db:"property_id" json:"property_id,omitempty"`
}

// StaffMember grants a user a role at one property.
type StaffMember struct {
	PropertyID string    `db:"property_id" json:"property_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RoomType groups rooms sharing a price and capacity.
type RoomType struct {
	ID         string `db:"id" json:"id"`
	PropertyID string `db:"property_id" json:"property_id"`
	Name       string `db:"name" json:"name"`
	BasePrice  Money  `db:"base_price" json:"base_price"`
	Capacity   int    `db:"capacity" json:"capacity"`
}

// Room is a bookable unit.
type Room struct {
	ID         string    `db:"id" json:"id"`
	PropertyID string    `db:"property_id" json:"property_id"`
	RoomTypeID *string   `db:"room_type_id" json:"room_type_id,omitempty"`
	Number     string    `db:"number" json:"number"`
	Status     string    `db:"status" json:"status"`
	BasePrice  Money     `db:"base_price" json:"base_price"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Booking reserves a room for a stay.
type Booking struct {
	ID         string    `db:"id" json:"id"`
	PropertyID string    `db:"property_id" json:"property_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	GuestID    *string   `db:"guest_id" json:"guest_id,omitempty"`
	GuestName  string    `db:"guest_name" json:"guest_name"`
	GuestPhone string    `db:"guest_phone" json:"guest_phone"`
	CheckIn    time.Time `db:"check_in" json:"check_in"`
	CheckOut   time.Time `db:"check_out" json:"check_out"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// MenuItem is a catalog entry of the food or bar menu.
type MenuItem struct {
	ID          string         `db:"id" json:"id"`
	PropertyID  string         `db:"property_id" json:"property_id"`
	Kind        string         `db:"kind" json:"kind"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	ImageURL    string         `db:"image_url" json:"image_url"`
	Ingredients pq.StringArray `db:"ingredients" json:"ingredients"`
	Weight      string         `db:"weight" json:"weight"`
	Price       *Money         `db:"price" json:"price,omitempty"`
	BasePrice   Money          `db:"base_price" json:"base_price"`
	Available   bool           `db:"available" json:"available"`
}

// LivePrice is the price charged for the item right now: the explicit price when
// set, otherwise the base price.
func (m *MenuItem) LivePrice() Money {
	if m.Price != nil {
		return *m.Price
	}
	return m.BasePrice
}

// Order kinds
const (
	OrderKindFood = "food"
	OrderKindBar  = "bar"
)

// Order is a food or bar order header.
type Order struct {
	ID             string    `db:"id" json:"id"`
	PropertyID     string    `db:"property_id" json:"property_id"`
	Kind           string    `db:"kind" json:"kind"`
	Status         string    `db:"status" json:"status"`
	TableNumber    *string   `db:"table_number" json:"table_number,omitempty"`
	RoomNumber     *string   `db:"room_number" json:"room_number,omitempty"`
	BookingID      *string   `db:"booking_id" json:"booking_id,omitempty"`
	CreatedBy      *string   `db:"created_by" json:"created_by,omitempty"`
	Subtotal       Money     `db:"subtotal" json:"subtotal"`
	ServiceCharge  Money     `db:"service_charge" json:"service_charge"`
	Total          Money     `db:"total" json:"total"`
	IdempotencyKey *string   `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is a snapshot of a menu item at the moment the order was placed.
// Later catalog edits never touch it.
type OrderItem struct {
	ID          string         `db:"id" json:"id"`
	OrderID     string         `db:"order_id" json:"order_id"`
	MenuItemID  *string        `db:"menu_item_id" json:"menu_item_id,omitempty"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	ImageURL    string         `db:"image_url" json:"image_url"`
	Ingredients pq.StringArray `db:"ingredients" json:"ingredients"`
	Weight      string         `db:"weight" json:"weight"`
	Options     JSONMap        `db:"options" json:"options,omitempty"`
	UnitPrice   Money          `db:"unit_price" json:"unit_price"`
	Quantity    int            `db:"quantity" json:"quantity"`
	LineTotal   Money          `db:"line_total" json:"line_total"`
}

// Folio is the running bill of a stay.
type Folio struct {
	ID          string    `db:"id" json:"id"`
	BookingID   string    `db:"booking_id" json:"booking_id"`
	PropertyID  string    `db:"property_id" json:"property_id"`
	Status      string    `db:"status" json:"status"`
	TotalAmount Money     `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TaxCategoryStandard is the tax category applied to every folio charge.
const TaxCategoryStandard = "standard"

// FolioItem is one charge on a folio.
type FolioItem struct {
	ID          string    `db:"id" json:"id"`
	FolioID     string    `db:"folio_id" json:"folio_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   Money     `db:"unit_price" json:"unit_price"`
	TotalPrice  Money     `db:"total_price" json:"total_price"`
	TaxCategory string    `db:"tax_category" json:"tax_category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InventoryItem is a stocked ingredient or supply.
type InventoryItem struct {
	ID          string    `db:"id" json:"id"`
	PropertyID  string    `db:"property_id" json:"property_id"`
	Name        string    `db:"name" json:"name"`
	Unit        string    `db:"unit" json:"unit"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	MinQuantity float64   `db:"min_quantity" json:"min_quantity"`
	CostPerUnit Money     `db:"cost_per_unit" json:"cost_per_unit"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsLowStock reports whether the item is at or below its threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// ServiceRequest is a guest call for staff (waiter, towels, bill...).
type ServiceRequest struct {
	ID          string     `db:"id" json:"id"`
	PropertyID  string     `db:"property_id" json:"property_id"`
	Type        string     `db:"type" json:"type"`
	Status      string     `db:"status" json:"status"`
	TableNumber *string    `db:"table_number" json:"table_number,omitempty"`
	RoomNumber  *string    `db:"room_number" json:"room_number,omitempty"`
	Note        string     `db:"note" json:"note"`
	CreatedBy   *string    `db:"created_by" json:"created_by,omitempty"`
	ResolvedBy  *string    `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PushSubscription is a browser Web Push endpoint registered by a user.
type PushSubscription struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	PropertyID *string   `db:"property_id" json:"property_id,omitempty"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	P256dh     string    `db:"p256dh" json:"p256dh"`
	Auth       string    `db:"auth" json:"auth"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	Consumer    string    `db:"consumer"`
	ProcessedAt time.Time `db:"processed_at"`
}
