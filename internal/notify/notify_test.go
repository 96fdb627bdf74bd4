package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zamora/internal/models"
)

func TestSMSClientSend(t *testing.T) {
	var got smsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"msg-1","status":"queued"}`))
	}))
	defer server.Close()

	c := NewSMSClient(server.URL, "key-123", "ZAMORA", zap.NewNop())
	require.NoError(t, c.Send(context.Background(), "+255700000001", "Room 101 needs towels"))

	assert.Equal(t, "+255700000001", got.To)
	assert.Equal(t, "ZAMORA", got.From)
	assert.Equal(t, "Room 101 needs towels", got.Text)
}

func TestSMSClientProviderError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid number"}`))
	}))
	defer server.Close()

	c := NewSMSClient(server.URL, "key", "", zap.NewNop())
	err := c.Send(context.Background(), "123", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number")
}

func TestSMSClientDisabled(t *testing.T) {
	c := NewSMSClient("", "", "", zap.NewNop())
	assert.ErrorIs(t, c.Send(context.Background(), "+1", "hi"), ErrSMSDisabled)
}

func browserSubscription(t *testing.T, endpoint string) models.PushSubscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return models.PushSubscription{
		UserID:   "u1",
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newTestSender(t *testing.T) *PushSender {
	t.Helper()
	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewPushSender(public, private, "ops@zamora.example", 60)
}

func TestPushSenderDelivers(t *testing.T) {
	var received int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		assert.Contains(t, r.Header.Get("Authorization"), "vapid")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := newTestSender(t)
	err := s.Send(context.Background(), browserSubscription(t, server.URL+"/push/abc"),
		PushMessage{Title: "Order ready", Body: "Table 4"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&received))
}

func TestPushSenderGoneEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	s := newTestSender(t)
	err := s.Send(context.Background(), browserSubscription(t, server.URL+"/push/old"), PushMessage{Title: "x"})
	assert.ErrorIs(t, err, ErrSubscriptionGone)
}

func TestPushSenderDisabled(t *testing.T) {
	s := NewPushSender("", "", "", 60)
	assert.ErrorIs(t, s.Send(context.Background(), models.PushSubscription{}, PushMessage{}), ErrPushDisabled)
}
