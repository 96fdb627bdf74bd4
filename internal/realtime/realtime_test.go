package realtime

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zamora/internal/models"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mqtt.Client
	sent []published
	err  error
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) IsConnected() bool { return true }

func encode(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestPublishUsesPropertyScopedTopic(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "zamora", zap.NewNop())

	err := p.Publish(Change{Table: "orders", Type: ChangeInsert, ID: "o1", PropertyID: "p1"})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, "zamora/properties/p1/orders", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var got Change
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &got))
	assert.Equal(t, "o1", got.ID)
	assert.Equal(t, ChangeInsert, got.Type)
}

func TestPublishReturnsBrokerError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := NewPublisher(client, "zamora", zap.NewNop())

	err := p.Publish(Change{Table: "rooms", PropertyID: "p1"})
	assert.ErrorContains(t, err, "not connected")
}

func TestChangesForBookingCheckInIncludesRoom(t *testing.T) {
	base := models.BaseEvent{EventID: "e1", EventType: models.EventTypeBookingStatusChanged, PropertyID: "p1"}
	event := models.BookingStatusChangedEvent{
		BaseEvent:  base,
		Booking:    models.Booking{ID: "b1", PropertyID: "p1", Status: models.BookingStatusCheckedIn},
		FromStatus: models.BookingStatusConfirmed,
		Room:       &models.Room{ID: "r1", PropertyID: "p1", Status: models.RoomStatusOccupied},
	}

	changes, err := ChangesFor(base, encode(t, event))
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "bookings", changes[0].Table)
	assert.Equal(t, ChangeUpdate, changes[0].Type)
	assert.Equal(t, "rooms", changes[1].Table)
	assert.Equal(t, "r1", changes[1].ID)
	assert.Equal(t, "e1", changes[1].EventID)
}

func TestChangesForFolioCharge(t *testing.T) {
	base := models.BaseEvent{EventID: "e2", EventType: models.EventTypeFolioChargeAdded, PropertyID: "p1"}
	event := models.FolioChargeAddedEvent{
		BaseEvent: base,
		Folio:     models.Folio{ID: "f1", PropertyID: "p1", TotalAmount: 5000},
		Item:      models.FolioItem{ID: "i1", FolioID: "f1", TotalPrice: 5000},
	}

	changes, err := ChangesFor(base, encode(t, event))
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "folio_items", changes[0].Table)
	assert.Equal(t, ChangeInsert, changes[0].Type)
	assert.Equal(t, "folios", changes[1].Table)
	assert.Equal(t, "p1", changes[1].PropertyID)
}

func TestChangesForServiceRequests(t *testing.T) {
	for eventType, want := range map[string]string{
		models.EventTypeServiceRequestCreated: ChangeInsert,
		models.EventTypeServiceRequestClosed:  ChangeUpdate,
	} {
		base := models.BaseEvent{EventID: "e3", EventType: eventType, PropertyID: "p1"}
		event := models.ServiceRequestEvent{BaseEvent: base, Request: models.ServiceRequest{ID: "s1", PropertyID: "p1"}}

		changes, err := ChangesFor(base, encode(t, event))
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, "service_requests", changes[0].Table)
		assert.Equal(t, want, changes[0].Type, eventType)
	}
}

func TestChangesForUnknownEvent(t *testing.T) {
	changes, err := ChangesFor(models.BaseEvent{EventType: "SOMETHING_ELSE"}, []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestChangesForMalformedPayload(t *testing.T) {
	_, err := ChangesFor(models.BaseEvent{EventType: models.EventTypeOrderPlaced}, []byte(`{"order":`))
	assert.Error(t, err)
}
