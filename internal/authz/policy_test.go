package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func staff(userID, propertyID, role string) Caller {
	return Caller{UserID: userID, Role: RoleGuest, Memberships: map[string]string{propertyID: role}}
}

func TestDecideAdminBypassesPropertyChecks(t *testing.T) {
	admin := Caller{UserID: "u1", Role: RoleSuperAdmin}

	assert.True(t, Decide(admin, Resource{Kind: KindPlatform}, ActionCreate).Allowed)
	assert.True(t, Decide(admin, Resource{Kind: KindFolio, PropertyID: "p9"}, ActionUpdate).Allowed)
}

func TestDecideWaiterCannotUseAdminConsole(t *testing.T) {
	waiter := staff("u2", "p1", RoleWaiter)

	d := Decide(waiter, Resource{Kind: KindPlatform}, ActionRead)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)
}

func TestDecideRequiresRoleAtTheSameProperty(t *testing.T) {
	kitchen := staff("u3", "p1", RoleKitchen)

	assert.True(t, Decide(kitchen, Resource{Kind: KindOrder, PropertyID: "p1"}, ActionUpdate).Allowed)
	assert.False(t, Decide(kitchen, Resource{Kind: KindOrder, PropertyID: "p2"}, ActionUpdate).Allowed)
	assert.False(t, Decide(kitchen, Resource{Kind: KindFolio, PropertyID: "p1"}, ActionRead).Allowed)
}

func TestDecideProfilePropertyCountsAsMembership(t *testing.T) {
	desk := Caller{UserID: "u4", Role: RoleFrontDesk, PropertyID: "p1"}

	assert.True(t, Decide(desk, Resource{Kind: KindBooking, PropertyID: "p1"}, ActionUpdate).Allowed)
	assert.False(t, Decide(desk, Resource{Kind: KindBooking, PropertyID: "p2"}, ActionUpdate).Allowed)
}

func TestDecideGuest(t *testing.T) {
	guest := Caller{UserID: "g1", Role: RoleGuest}

	for _, kind := range []string{KindOrder, KindBarOrder, KindBooking, KindServiceRequest} {
		assert.True(t, Decide(guest, Resource{Kind: kind, PropertyID: "p1"}, ActionCreate).Allowed, kind)
	}
	assert.False(t, Decide(guest, Resource{Kind: KindRoom, PropertyID: "p1"}, ActionCreate).Allowed)
	assert.False(t, Decide(guest, Resource{Kind: KindOrder, PropertyID: "p1"}, ActionUpdate).Allowed)

	assert.True(t, Decide(guest, Resource{Kind: KindOrder, PropertyID: "p1", OwnerID: "g1"}, ActionRead).Allowed)
	assert.False(t, Decide(guest, Resource{Kind: KindOrder, PropertyID: "p1", OwnerID: "g2"}, ActionRead).Allowed)
	assert.False(t, Decide(guest, Resource{Kind: KindOrder, PropertyID: "p1"}, ActionRead).Allowed)
}

func TestDecideGuestProfilePropertyGrantsNothing(t *testing.T) {
	guest := Caller{UserID: "g1", Role: RoleGuest, PropertyID: "p1"}
	assert.False(t, Decide(guest, Resource{Kind: KindInventory, PropertyID: "p1"}, ActionRead).Allowed)
}

func TestDecideRejectsAnonymousAndUnknownKinds(t *testing.T) {
	assert.False(t, Decide(Caller{}, Resource{Kind: KindOrder, PropertyID: "p1"}, ActionCreate).Allowed)

	owner := staff("u5", "p1", RoleOwner)
	assert.False(t, Decide(owner, Resource{Kind: "invoices", PropertyID: "p1"}, ActionRead).Allowed)
}

func TestDecideRoleTable(t *testing.T) {
	cases := []struct {
		role    string
		kind    string
		action  string
		allowed bool
	}{
		{RoleOwner, KindStaff, ActionCreate, true},
		{RoleManager, KindStaff, ActionCreate, false},
		{RoleManager, KindStaff, ActionRead, true},
		{RoleHousekeeping, KindRoom, ActionUpdate, true},
		{RoleHousekeeping, KindRoom, ActionCreate, false},
		{RoleKitchen, KindMenu, ActionUpdate, true},
		{RoleBar, KindMenu, ActionCreate, true},
		{RoleManager, KindMenu, ActionDelete, true},
		{RoleWaiter, KindMenu, ActionUpdate, false},
		{RoleWaiter, KindMenu, ActionRead, true},
		{RoleBar, KindBarOrder, ActionUpdate, true},
		{RoleBar, KindOrder, ActionUpdate, false},
		{RoleCashier, KindFolio, ActionUpdate, true},
		{RoleWaiter, KindFolio, ActionRead, false},
		{RoleKitchen, KindInventory, ActionUpdate, true},
		{RoleKitchen, KindInventory, ActionDelete, false},
		{RoleWaiter, KindServiceRequest, ActionUpdate, true},
		{RoleKitchen, KindServiceRequest, ActionUpdate, false},
	}
	for _, tc := range cases {
		d := Decide(staff("u", "p1", tc.role), Resource{Kind: tc.kind, PropertyID: "p1"}, tc.action)
		assert.Equal(t, tc.allowed, d.Allowed, "%s %s %s", tc.role, tc.action, tc.kind)
	}
}

func TestStaffRole(t *testing.T) {
	assert.True(t, StaffRole(RoleKitchen))
	assert.False(t, StaffRole(RoleAdmin))
	assert.False(t, StaffRole(RoleGuest))
	assert.False(t, StaffRole("chef"))
}
