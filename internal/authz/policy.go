// Package authz holds the single authorization policy of the platform. Every
// handler asks Decide before touching data; no other code compares roles.
package authz

// Roles
const (
	RoleSuperAdmin   = "super_admin"
	RoleAdmin        = "admin"
	RoleOwner        = "owner"
	RoleManager      = "manager"
	RoleFrontDesk    = "front_desk"
	RoleKitchen      = "kitchen"
	RoleBar          = "bar"
	RoleCashier      = "cashier"
	RoleWaiter       = "waiter"
	RoleHousekeeping = "housekeeping"
	RoleGuest        = "guest"
)

// KnownRole reports whether role is one of the platform roles.
func KnownRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleOwner, RoleManager, RoleFrontDesk, RoleKitchen,
		RoleBar, RoleCashier, RoleWaiter, RoleHousekeeping, RoleGuest:
		return true
	}
	return false
}

// StaffRole reports whether role can be granted at a single property.
func StaffRole(role string) bool {
	return KnownRole(role) && role != RoleSuperAdmin && role != RoleAdmin && role != RoleGuest
}

// Resource kinds
const (
	KindPlatform       = "platform"
	KindProperty       = "property"
	KindStaff          = "staff"
	KindRoom           = "room"
	KindBooking        = "booking"
	KindOrder          = "order"
	KindBarOrder       = "bar_order"
	KindFolio          = "folio"
	KindInventory      = "inventory"
	KindServiceRequest = "service_request"
	KindMenu           = "menu"
)

// Actions
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Caller is the authenticated identity a request runs as.
type Caller struct {
	UserID string
	// Role is the platform role from the profile.
	Role string
	// PropertyID is the property the profile is attached to, if any.
	PropertyID string
	// Memberships maps property id to the role held there.
	Memberships map[string]string
}

// IsAdmin reports whether the caller administers the whole platform.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleSuperAdmin || c.Role == RoleAdmin
}

// RoleAt returns the role the caller holds at propertyID, or "".
func (c Caller) RoleAt(propertyID string) string {
	if propertyID == "" {
		return ""
	}
	if role, ok := c.Memberships[propertyID]; ok {
		return role
	}
	if c.PropertyID == propertyID && c.Role != RoleGuest {
		return c.Role
	}
	return ""
}

// Resource identifies what an action targets.
type Resource struct {
	Kind       string
	PropertyID string
	// OwnerID is the user who created the resource, when known.
	OwnerID string
}

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

type roleSet map[string]bool

func roles(names ...string) roleSet {
	s := make(roleSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

var (
	management   = roles(RoleOwner, RoleManager)
	allStaff     = roles(RoleOwner, RoleManager, RoleFrontDesk, RoleKitchen, RoleBar, RoleCashier, RoleWaiter, RoleHousekeeping)
	roomReaders  = roles(RoleOwner, RoleManager, RoleFrontDesk, RoleHousekeeping, RoleCashier)
	roomUpdaters = roles(RoleOwner, RoleManager, RoleFrontDesk, RoleHousekeeping)
	frontOffice  = roles(RoleOwner, RoleManager, RoleFrontDesk, RoleCashier)
	bookingEdit  = roles(RoleOwner, RoleManager, RoleFrontDesk)
	kitchenRead  = roles(RoleOwner, RoleManager, RoleKitchen, RoleWaiter, RoleCashier, RoleBar)
	kitchenEdit  = roles(RoleOwner, RoleManager, RoleKitchen, RoleWaiter, RoleCashier)
	orderTakers  = roles(RoleOwner, RoleManager, RoleWaiter, RoleCashier)
	barRead      = roles(RoleOwner, RoleManager, RoleBar, RoleWaiter, RoleCashier)
	barEdit      = roles(RoleOwner, RoleManager, RoleBar, RoleWaiter, RoleCashier)
	stockRead    = roles(RoleOwner, RoleManager, RoleKitchen, RoleBar)
	stockEdit    = roles(RoleOwner, RoleManager, RoleKitchen, RoleBar)
	floorStaff   = roles(RoleOwner, RoleManager, RoleFrontDesk, RoleWaiter, RoleHousekeeping)
	menuEdit     = roles(RoleOwner, RoleManager, RoleKitchen, RoleBar)
)

// policy lists, per resource kind and action, the property roles allowed.
var policy = map[string]map[string]roleSet{
	KindPlatform: {},
	KindProperty: {
		ActionRead:   allStaff,
		ActionUpdate: management,
	},
	KindStaff: {
		ActionRead:   management,
		ActionCreate: roles(RoleOwner),
		ActionUpdate: roles(RoleOwner),
		ActionDelete: roles(RoleOwner),
	},
	KindRoom: {
		ActionRead:   roomReaders,
		ActionCreate: management,
		ActionUpdate: roomUpdaters,
		ActionDelete: management,
	},
	KindBooking: {
		ActionRead:   frontOffice,
		ActionCreate: bookingEdit,
		ActionUpdate: bookingEdit,
		ActionDelete: management,
	},
	KindOrder: {
		ActionRead:   kitchenRead,
		ActionCreate: orderTakers,
		ActionUpdate: kitchenEdit,
		ActionDelete: management,
	},
	KindBarOrder: {
		ActionRead:   barRead,
		ActionCreate: orderTakers,
		ActionUpdate: barEdit,
		ActionDelete: management,
	},
	KindFolio: {
		ActionRead:   frontOffice,
		ActionCreate: frontOffice,
		ActionUpdate: frontOffice,
	},
	KindInventory: {
		ActionRead:   stockRead,
		ActionCreate: management,
		ActionUpdate: stockEdit,
		ActionDelete: management,
	},
	KindServiceRequest: {
		ActionRead:   floorStaff,
		ActionCreate: allStaff,
		ActionUpdate: floorStaff,
	},
	KindMenu: {
		ActionRead:   allStaff,
		ActionCreate: menuEdit,
		ActionUpdate: menuEdit,
		ActionDelete: menuEdit,
	},
}

// guestCreatable are the kinds any signed-in user may create at any property.
var guestCreatable = map[string]bool{
	KindOrder:          true,
	KindBarOrder:       true,
	KindBooking:        true,
	KindServiceRequest: true,
}

// Decide is the authorization policy. Admins may do anything; everyone else
// needs an allowed role at the resource's property, or must own the resource
// for reads.
func Decide(caller Caller, res Resource, action string) Decision {
	if caller.UserID == "" {
		return deny("unauthenticated")
	}
	if caller.IsAdmin() {
		return allow("platform admin")
	}

	actions, ok := policy[res.Kind]
	if !ok {
		return deny("unknown resource kind")
	}
	if res.Kind == KindPlatform {
		return deny("platform administration requires an admin role")
	}

	if role := caller.RoleAt(res.PropertyID); role != "" && actions[action][role] {
		return allow("role " + role + " at property")
	}

	if action == ActionCreate && guestCreatable[res.Kind] && res.PropertyID != "" {
		return allow("self-service create")
	}
	if action == ActionRead && res.OwnerID != "" && res.OwnerID == caller.UserID {
		return allow("owner of resource")
	}
	return deny("role not allowed for " + action + " on " + res.Kind)
}

// OrderKind maps an order kind to the resource kind guarding it.
func OrderKind(orderKind string) string {
	if orderKind == "bar" {
		return KindBarOrder
	}
	return KindOrder
}
