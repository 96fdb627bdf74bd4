package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/redisclient"
	"zamora/internal/store"
	"zamora/internal/util"
)

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	barPercent     int64
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	barPercent int64,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		barPercent:     barPercent,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest represents a request to place a food or bar order
type PlaceOrderRequest struct {
	Items       []CartLine `json:"items" binding:"required,min=1,dive"`
	TableNumber *string    `json:"table_number,omitempty"`
	RoomNumber  *string    `json:"room_number,omitempty"`
	BookingID   *string    `json:"booking_id,omitempty"`
}

// OrderDetail is an order with its item snapshots.
type OrderDetail struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

// PlaceOrder prices the cart against the live catalog and stores header and
// item snapshots together. A repeated idempotencyKey from the same caller at the
// same property returns the first order. Keys are ignored for anonymous callers.
func (s *OrderService) PlaceOrder(ctx context.Context, propertyID, kind, createdBy, idempotencyKey string, req *PlaceOrderRequest) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if kind != models.OrderKindFood && kind != models.OrderKindBar {
		return nil, invalid("unknown order kind %q", kind)
	}
	scope := redisclient.IdempotencyScope{
		UserID:     createdBy,
		PropertyID: propertyID,
		Kind:       kind,
		Key:        strings.TrimSpace(idempotencyKey),
	}
	if createdBy == "" {
		scope.Key = ""
	}

	if scope.Key != "" {
		existing, err := s.claim(ctx, scope)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	detail, err := s.place(ctx, scope, req)
	if err != nil {
		if scope.Key != "" {
			if rerr := s.redis.ReleaseIdempotencyKey(ctx, scope); rerr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", scope.Key), zap.Error(rerr))
			}
		}
		return nil, err
	}

	if scope.Key != "" {
		if err := s.redis.SetIdempotencyKey(ctx, scope, detail.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.String("key", scope.Key), zap.Error(err))
		}
	}
	return detail, nil
}

// claim reserves the idempotency key, returning the earlier order when the key
// was already used.
func (s *OrderService) claim(ctx context.Context, scope redisclient.IdempotencyScope) (*OrderDetail, error) {
	claimed, orderID, err := s.redis.ClaimIdempotencyKey(ctx, scope, s.idempotencyTTL)
	if errors.Is(err, redisclient.ErrClaimPending) {
		return nil, fmt.Errorf("%w: an order with this idempotency key is being placed", ErrConflict)
	}
	if err != nil {
		// Redis is only the fast path; the unique constraint still guards the key.
		s.logger.Warn("Idempotency claim failed, falling back to database", zap.Error(err))
		return s.byIdempotencyKey(ctx, scope)
	}
	if claimed {
		return nil, nil
	}

	s.logger.Info("Duplicate order request detected",
		zap.String("idempotency_key", scope.Key),
		zap.String("order_id", orderID))
	existing, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return replayOf(existing, scope)
}

func (s *OrderService) byIdempotencyKey(ctx context.Context, scope redisclient.IdempotencyScope) (*OrderDetail, error) {
	order, err := s.store.GetOrderByIdempotencyKey(ctx, scope.UserID, scope.PropertyID, scope.Key)
	if err != nil || order == nil {
		return nil, err
	}
	existing, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return replayOf(existing, scope)
}

// replayOf returns existing only when it was placed by the same caller, at the
// same property, for the same kind as the repeated request.
func replayOf(existing *OrderDetail, scope redisclient.IdempotencyScope) (*OrderDetail, error) {
	if existing.PropertyID != scope.PropertyID || existing.Kind != scope.Kind ||
		existing.CreatedBy == nil || *existing.CreatedBy != scope.UserID {
		return nil, fmt.Errorf("%w: idempotency key already used for another order", ErrConflict)
	}
	return existing, nil
}

func (s *OrderService) place(ctx context.Context, scope redisclient.IdempotencyScope, req *PlaceOrderRequest) (*OrderDetail, error) {
	propertyID, kind := scope.PropertyID, scope.Kind
	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.MenuItemID)
	}
	catalog, err := s.store.GetMenuItemsByIDs(ctx, propertyID, ids)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	items, err := SnapshotCart(kind, propertyID, req.Items, catalog)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}
	totals := PriceCart(kind, items, s.percentFor(kind))

	order := &models.Order{
		ID:            uuid.NewString(),
		PropertyID:    propertyID,
		Kind:          kind,
		Status:        models.OrderStatusPending,
		TableNumber:   req.TableNumber,
		RoomNumber:    req.RoomNumber,
		BookingID:     req.BookingID,
		Subtotal:      totals.Subtotal,
		ServiceCharge: totals.ServiceCharge,
		Total:         totals.Total,
	}
	if scope.UserID != "" {
		createdBy := scope.UserID
		order.CreatedBy = &createdBy
	}
	if scope.Key != "" {
		key := scope.Key
		order.IdempotencyKey = &key
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		if errors.Is(err, store.ErrDuplicate) && scope.Key != "" {
			existing, lookupErr := s.byIdempotencyKey(ctx, scope)
			if errors.Is(lookupErr, ErrConflict) {
				return nil, lookupErr
			}
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", translate(err))
	}

	util.OrdersPlacedTotal.WithLabelValues(kind).Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("property_id", propertyID),
		zap.String("kind", kind),
		zap.Stringer("total", order.Total))

	if err := s.eventPublisher.PublishOrderPlaced(ctx, order, items); err != nil {
		s.logger.Error("Failed to publish ORDER_PLACED event", zap.Error(err))
	}

	return &OrderDetail{Order: *order, Items: items}, nil
}

func (s *OrderService) percentFor(kind string) int64 {
	if kind == models.OrderKindBar {
		return s.barPercent
	}
	return 0
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{Order: *order, Items: items}, nil
}

// ListOrders returns the orders of a property
func (s *OrderService) ListOrders(ctx context.Context, propertyID string, f store.OrderFilter) ([]models.Order, error) {
	if f.Status != "" && !models.OrderTransitions.Known(f.Status) {
		return nil, invalid("unknown order status %q", f.Status)
	}
	if f.Kind != "" && f.Kind != models.OrderKindFood && f.Kind != models.OrderKindBar {
		return nil, invalid("unknown order kind %q", f.Kind)
	}
	return s.store.ListOrders(ctx, propertyID, f)
}

// UpdateStatus moves an order through its state machine
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.OrderTransitions.Known(status) {
		return nil, invalid("unknown order status %q", status)
	}

	order, from, err := s.store.TransitionOrder(ctx, orderID, status)
	if err != nil {
		return nil, translate(err)
	}

	util.OrderTransitionsTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", from),
		zap.String("to", status))

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, from); err != nil {
		s.logger.Error("Failed to publish ORDER_STATUS_CHANGED event", zap.Error(err))
	}
	return order, nil
}
