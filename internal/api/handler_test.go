package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zamora/internal/auth"
	"zamora/internal/authz"
	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/redisclient"
	"zamora/internal/service"
	"zamora/internal/store"
)

const testSecret = "api-test-secret"

type profiles struct {
	byID        map[string]*models.Profile
	memberships map[string][]models.StaffMember
}

func (p *profiles) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if prof, ok := p.byID[userID]; ok {
		return prof, nil
	}
	return nil, fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
}

func (p *profiles) ListMemberships(_ context.Context, userID string) ([]models.StaffMember, error) {
	return p.memberships[userID], nil
}

type discard struct{}

func (discard) PublishEvent(context.Context, string, any) error { return nil }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
}

func newTestServer(t *testing.T, ready map[string]Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := store.New(sqlx.NewDb(db, "postgres"))
	rc := redisclient.New(rdb)
	events := broker.NewEventPublisher(discard{})

	src := &profiles{
		byID: map[string]*models.Profile{
			"admin":  {ID: "admin", Role: authz.RoleSuperAdmin},
			"waiter": {ID: "waiter", Role: authz.RoleWaiter},
		},
		memberships: map[string][]models.StaffMember{
			"waiter": {{PropertyID: "p1", UserID: "waiter", Role: authz.RoleWaiter}},
		},
	}
	authenticator := auth.NewAuthenticator(auth.NewVerifier(testSecret, "authenticated"), src, "zamora-access-token", zap.NewNop())

	svc := Services{
		Orders:     service.NewOrderService(st, rc, events, 10, time.Hour),
		Folios:     service.NewFolioService(st, events),
		Bookings:   service.NewBookingService(st, events),
		Rooms:      service.NewRoomService(st, events),
		Inventory:  service.NewInventoryService(st, rc, events),
		Menu:       service.NewMenuService(st, rc),
		Properties: service.NewPropertyService(st, rc),
		Requests:   service.NewServiceRequestService(st, events),
		Push:       service.NewPushService(st),
	}
	h := NewHandler(svc, authenticator, ready)
	h.logger = zap.NewNop()

	router := gin.New()
	h.SetupRoutes(router, nil)
	return &testServer{router: router, mock: mock}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, userID))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, map[string]Pinger{
		"postgres": pinger{},
		"redis":    pinger{err: errors.New("dial tcp: connection refused")},
	})

	w := s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/desktop/properties/p1/rooms", "/api/admin/properties", "/api/mobile/me"} {
		w := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestWaiterCannotUseAdminConsole(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/admin/properties", "waiter")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, w.Body.String())
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestWaiterCannotReadInventory(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/desktop/properties/p1/inventory", "waiter")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/desktop/properties/p2/service-requests", "waiter")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInternalErrorsAreNotDisclosed(t *testing.T) {
	s := newTestServer(t, nil)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties ORDER BY name")).
		WillReturnError(errors.New("pq: relation \"properties\" does not exist"))

	w := s.do(t, http.MethodGet, "/api/admin/properties", "admin")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

var propertyColumns = []string{"id", "name", "slug", "type", "contact_phone", "created_at", "updated_at"}

func TestPublicStorefrontIsCached(t *testing.T) {
	s := newTestServer(t, nil)
	now := time.Now()
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties WHERE slug = $1")).
		WithArgs("zamora-lodge").
		WillReturnRows(sqlmock.NewRows(propertyColumns).
			AddRow("p1", "Zamora Lodge", "zamora-lodge", "lodge", "+255700000000", now, now))

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/public/properties/zamora-lodge", "")
		require.Equal(t, http.StatusOK, w.Code)

		var sf service.Storefront
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sf))
		assert.Equal(t, "p1", sf.ID)
		assert.Equal(t, "Zamora Lodge", sf.Name)
	}
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestPublicStorefrontUnknownSlug(t *testing.T) {
	s := newTestServer(t, nil)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties WHERE slug = $1")).
		WithArgs("nowhere").
		WillReturnRows(sqlmock.NewRows(propertyColumns))

	w := s.do(t, http.MethodGet, "/api/public/properties/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

var orderColumns = []string{"id", "property_id", "kind", "status", "created_by", "subtotal", "service_charge", "total", "created_at", "updated_at"}

func expectOrder(s *testServer, createdBy string) {
	now := time.Now()
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow("o1", "p1", "bar", "pending", createdBy, int64(13000), int64(1300), int64(14300), now, now))
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM order_items WHERE order_id = $1")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "name", "unit_price", "quantity", "line_total"}))
}

func TestGuestReadsOwnOrderOnly(t *testing.T) {
	s := newTestServer(t, nil)

	expectOrder(s, "guest-1")
	w := s.do(t, http.MethodGet, "/api/mobile/orders/o1", "guest-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":143.00`)

	expectOrder(s, "guest-1")
	w = s.do(t, http.MethodGet, "/api/mobile/orders/o1", "guest-2")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "143")
}

func TestPlaceOrderRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/mobile/properties/p1/bar-orders", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "guest-1"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeForProfilelessUser(t *testing.T) {
	s := newTestServer(t, nil)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, phone, role, property_id FROM profiles WHERE id = $1")).
		WithArgs("guest-9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone", "role", "property_id"}))

	w := s.do(t, http.MethodGet, "/api/mobile/me", "guest-9")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "guest-9", body["user_id"])
	assert.Equal(t, authz.RoleGuest, body["role"])
	assert.NotContains(t, body, "profile")
}

var menuColumns = []string{"id", "property_id", "kind", "name", "ingredients", "price", "base_price", "available"}

func TestKitchenCreatesMenuItem(t *testing.T) {
	s := newTestServer(t, nil)
	now := time.Now()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO menu_items")).
		WithArgs(sqlmock.AnyArg(), "p1", "food", "Pilau", "", "", sqlmock.AnyArg(), "", nil, int64(1250), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(propertyColumns).
			AddRow("p1", "Zamora Lodge", "zamora-lodge", "lodge", "", now, now))

	w := s.doJSON(t, http.MethodPost, "/api/desktop/properties/p1/menu", "chef",
		`{"kind":"food","name":"Pilau","base_price":12.50}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"base_price":12.50`)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestWaiterCannotEditMenu(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.doJSON(t, http.MethodPost, "/api/desktop/properties/p1/menu", "waiter", `{"kind":"bar","name":"Beer"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM menu_items WHERE id = $1")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(menuColumns).AddRow("m1", "p1", "bar", "Beer", "{}", nil, int64(3000), true))

	w = s.doJSON(t, http.MethodPatch, "/api/desktop/menu/m1", "waiter", `{"price":1}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestKitchenCannotEditAnotherPropertysMenu(t *testing.T) {
	s := newTestServer(t, nil)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM menu_items WHERE id = $1")).
		WithArgs("m9").
		WillReturnRows(sqlmock.NewRows(menuColumns).AddRow("m9", "p2", "food", "Ugali", "{}", nil, int64(800), true))

	w := s.doJSON(t, http.MethodDelete, "/api/desktop/menu/m9", "chef", `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}
