package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamora/internal/models"
	"zamora/internal/notify"
	"zamora/internal/realtime"
)

type fakeRecipients struct {
	staff     map[string][]string
	subs      map[string][]models.PushSubscription
	processed map[string]bool
	deleted   []string
	roles     []string
}

func newFakeRecipients() *fakeRecipients {
	return &fakeRecipients{
		staff:     map[string][]string{},
		subs:      map[string][]models.PushSubscription{},
		processed: map[string]bool{},
	}
}

func (f *fakeRecipients) ListStaffUserIDs(_ context.Context, propertyID string, roles []string) ([]string, error) {
	f.roles = roles
	return f.staff[propertyID], nil
}

func (f *fakeRecipients) ListPushSubscriptions(_ context.Context, userIDs []string) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, id := range userIDs {
		out = append(out, f.subs[id]...)
	}
	return out, nil
}

func (f *fakeRecipients) DeletePushSubscription(_ context.Context, endpoint string) error {
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeRecipients) IsEventProcessed(_ context.Context, eventID, consumer string) (bool, error) {
	return f.processed[consumer+"/"+eventID], nil
}

func (f *fakeRecipients) MarkEventProcessed(_ context.Context, eventID, _, consumer string) error {
	f.processed[consumer+"/"+eventID] = true
	return nil
}

type sms struct {
	to, text string
}

type fakeSMS struct {
	sent []sms
	err  error
}

func (f *fakeSMS) Send(_ context.Context, to, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sms{to: to, text: text})
	return nil
}

type fakePush struct {
	sent []string
	gone map[string]bool
}

func (f *fakePush) Send(_ context.Context, sub models.PushSubscription, _ notify.PushMessage) error {
	if f.gone[sub.Endpoint] {
		return notify.ErrSubscriptionGone
	}
	f.sent = append(f.sent, sub.UserID)
	return nil
}

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func strPtr(s string) *string { return &s }

func TestServiceRequestNotifiesPhoneAndStaff(t *testing.T) {
	rec := newFakeRecipients()
	rec.staff["p1"] = []string{"waiter-1"}
	rec.subs["waiter-1"] = []models.PushSubscription{{UserID: "waiter-1", Endpoint: "https://push.example/1"}}
	smsClient, push := &fakeSMS{}, &fakePush{}
	w := NewNotificationWorker(nil, rec, smsClient, push)

	event := models.ServiceRequestEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeServiceRequestCreated, PropertyID: "p1"},
		Request: models.ServiceRequest{
			ID: "s1", PropertyID: "p1", Type: "waiter", TableNumber: strPtr("7"), Note: "more water",
		},
		ContactPhone: "+255700000001",
	}
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, event)))

	require.Len(t, smsClient.sent, 1)
	assert.Equal(t, "+255700000001", smsClient.sent[0].to)
	assert.Contains(t, smsClient.sent[0].text, "table 7")
	assert.Contains(t, smsClient.sent[0].text, "more water")
	assert.Equal(t, []string{"waiter-1"}, push.sent)
	assert.Equal(t, serviceRequestRoles, rec.roles)
	assert.True(t, rec.processed[NotificationsConsumer+"/e1"])
}

func TestDuplicateEventIsIgnored(t *testing.T) {
	rec := newFakeRecipients()
	smsClient := &fakeSMS{}
	w := NewNotificationWorker(nil, rec, smsClient, &fakePush{})

	event := models.BookingCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeBookingCreated, PropertyID: "p1"},
		Booking: models.Booking{
			ID: "b1", PropertyID: "p1", GuestName: "Amani", GuestPhone: "+255700000002",
			CheckIn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			Status: models.BookingStatusPending,
		},
		PropertyName: "Zamora Lodge",
		RoomNumber:   "12",
	}
	msg := message(t, event)
	require.NoError(t, w.events.HandleMessage(context.Background(), msg))
	require.NoError(t, w.events.HandleMessage(context.Background(), msg))

	require.Len(t, smsClient.sent, 1)
	assert.Contains(t, smsClient.sent[0].text, "2026-03-01 to 2026-03-03")
	assert.Contains(t, smsClient.sent[0].text, "room 12")
}

func TestOrderReadyPushesToCreatorOnly(t *testing.T) {
	rec := newFakeRecipients()
	rec.subs["guest-1"] = []models.PushSubscription{{UserID: "guest-1", Endpoint: "https://push.example/g"}}
	push := &fakePush{}
	w := NewNotificationWorker(nil, rec, &fakeSMS{}, push)

	preparing := models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeOrderStatusChanged},
		Order:     models.Order{ID: "o1", Status: models.OrderStatusPreparing, CreatedBy: strPtr("guest-1")},
	}
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, preparing)))
	assert.Empty(t, push.sent)

	ready := preparing
	ready.EventID = "e4"
	ready.Order.Status = models.OrderStatusReady
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, ready)))
	assert.Equal(t, []string{"guest-1"}, push.sent)
}

func TestGoneSubscriptionIsDeleted(t *testing.T) {
	rec := newFakeRecipients()
	rec.staff["p1"] = []string{"cook-1", "cook-2"}
	rec.subs["cook-1"] = []models.PushSubscription{{UserID: "cook-1", Endpoint: "https://push.example/old"}}
	rec.subs["cook-2"] = []models.PushSubscription{{UserID: "cook-2", Endpoint: "https://push.example/new"}}
	push := &fakePush{gone: map[string]bool{"https://push.example/old": true}}
	w := NewNotificationWorker(nil, rec, &fakeSMS{}, push)

	event := models.LowStockDetectedEvent{
		BaseEvent: models.BaseEvent{EventID: "e5", EventType: models.EventTypeLowStockDetected, PropertyID: "p1"},
		Item:      models.InventoryItem{ID: "i1", PropertyID: "p1", Name: "Flour", Quantity: 2, MinQuantity: 10},
		Urgency:   "high",
	}
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, event)))

	assert.Equal(t, []string{"cook-2"}, push.sent)
	assert.Equal(t, []string{"https://push.example/old"}, rec.deleted)
	assert.Equal(t, lowStockRoles, rec.roles)
}

func TestSMSFailureDoesNotFailEvent(t *testing.T) {
	rec := newFakeRecipients()
	w := NewNotificationWorker(nil, rec, &fakeSMS{err: errors.New("provider down")}, &fakePush{})

	event := models.ServiceRequestEvent{
		BaseEvent:    models.BaseEvent{EventID: "e6", EventType: models.EventTypeServiceRequestCreated, PropertyID: "p1"},
		Request:      models.ServiceRequest{ID: "s2", PropertyID: "p1", Type: "bill"},
		ContactPhone: "+255700000003",
	}
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, event)))
	assert.True(t, rec.processed[NotificationsConsumer+"/e6"])
}

type fakeChanges struct {
	changes []realtime.Change
	err     error
}

func (f *fakeChanges) Publish(ch realtime.Change) error {
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, ch)
	return nil
}

func TestRealtimeWorkerRelaysChanges(t *testing.T) {
	pub := &fakeChanges{}
	w := NewRealtimeWorker(nil, pub)

	event := models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "e7", EventType: models.EventTypeOrderPlaced, PropertyID: "p1"},
		Order:     models.Order{ID: "o2", PropertyID: "p1", Kind: models.OrderKindBar},
	}
	require.NoError(t, w.events.HandleMessage(context.Background(), message(t, event)))

	require.Len(t, pub.changes, 1)
	assert.Equal(t, "orders", pub.changes[0].Table)
	assert.Equal(t, realtime.ChangeInsert, pub.changes[0].Type)
	assert.Equal(t, "o2", pub.changes[0].ID)
}

func TestRealtimeWorkerSurfacesPublishError(t *testing.T) {
	w := NewRealtimeWorker(nil, &fakeChanges{err: errors.New("broker offline")})

	event := models.RoomStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e8", EventType: models.EventTypeRoomStatusChanged, PropertyID: "p1"},
		Room:      models.Room{ID: "r1", PropertyID: "p1", Status: models.RoomStatusClean},
	}
	err := w.events.HandleMessage(context.Background(), message(t, event))
	assert.ErrorContains(t, err, "broker offline")
}
