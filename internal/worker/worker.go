package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"zamora/internal/authz"
	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/notify"
	"zamora/internal/realtime"
	"zamora/internal/util"
)

// Consumer group names
const (
	NotificationsConsumer = "zamora-notifications"
	RealtimeConsumer      = "zamora-realtime"
)

// SMSSender sends one text message
type SMSSender interface {
	Send(ctx context.Context, to, text string) error
}

// PushSender delivers one Web Push message
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, msg notify.PushMessage) error
}

// Recipients resolves who gets notified and remembers handled events.
// *store.Store implements it.
type Recipients interface {
	ListStaffUserIDs(ctx context.Context, propertyID string, roles []string) ([]string, error)
	ListPushSubscriptions(ctx context.Context, userIDs []string) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
	IsEventProcessed(ctx context.Context, eventID, consumer string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType, consumer string) error
}

// ChangePublisher forwards row changes to dashboards. *realtime.Publisher implements it.
type ChangePublisher interface {
	Publish(ch realtime.Change) error
}

var (
	serviceRequestRoles = []string{authz.RoleWaiter, authz.RoleFrontDesk, authz.RoleManager, authz.RoleOwner}
	lowStockRoles       = []string{authz.RoleKitchen, authz.RoleBar, authz.RoleManager, authz.RoleOwner}
)

// NotificationWorker turns domain events into SMS and push notifications
type NotificationWorker struct {
	consumer   *broker.Consumer
	events     *broker.EventHandler
	recipients Recipients
	sms        SMSSender
	push       PushSender
	logger     *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, recipients Recipients, sms SMSSender, push PushSender) *NotificationWorker {
	w := &NotificationWorker{
		consumer:   consumer,
		events:     broker.NewEventHandler(),
		recipients: recipients,
		sms:        sms,
		push:       push,
		logger:     util.GetLogger().With(zap.String("worker", NotificationsConsumer)),
	}

	w.events.Handle(models.EventTypeServiceRequestCreated, w.once(broker.Typed(w.onServiceRequest)))
	w.events.Handle(models.EventTypeOrderStatusChanged, w.once(broker.Typed(w.onOrderStatusChanged)))
	w.events.Handle(models.EventTypeBookingCreated, w.once(broker.Typed(w.onBookingCreated)))
	w.events.Handle(models.EventTypeLowStockDetected, w.once(broker.Typed(w.onLowStock)))

	return w
}

// Start consumes until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.events.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// once skips events this consumer group already handled and records the ones it handles.
func (w *NotificationWorker) once(fn broker.RawHandler) broker.RawHandler {
	return func(ctx context.Context, base models.BaseEvent, payload []byte) error {
		processed, err := w.recipients.IsEventProcessed(ctx, base.EventID, NotificationsConsumer)
		if err != nil {
			return fmt.Errorf("check processed event: %w", err)
		}
		if processed {
			w.logger.Debug("Event already processed", zap.String("event_id", base.EventID))
			return nil
		}

		if err := fn(ctx, base, payload); err != nil {
			return err
		}
		return w.recipients.MarkEventProcessed(ctx, base.EventID, base.EventType, NotificationsConsumer)
	}
}

func (w *NotificationWorker) onServiceRequest(ctx context.Context, e *models.ServiceRequestEvent) error {
	req := e.Request
	where := location(req.TableNumber, req.RoomNumber)

	if e.ContactPhone != "" {
		text := fmt.Sprintf("Zamora: new %s request at %s", req.Type, where)
		if req.Note != "" {
			text += ": " + req.Note
		}
		w.sendSMS(ctx, e.ContactPhone, text)
	}

	w.pushToStaff(ctx, req.PropertyID, serviceRequestRoles, notify.PushMessage{
		Title: "New service request",
		Body:  fmt.Sprintf("%s at %s", req.Type, where),
		Data:  map[string]string{"request_id": req.ID, "property_id": req.PropertyID},
	})
	return nil
}

func (w *NotificationWorker) onOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	order := e.Order
	if order.Status != models.OrderStatusReady || order.CreatedBy == nil {
		return nil
	}

	w.pushToUsers(ctx, []string{*order.CreatedBy}, notify.PushMessage{
		Title: "Order ready",
		Body:  fmt.Sprintf("Your %s order is ready", order.Kind),
		Data:  map[string]string{"order_id": order.ID, "property_id": order.PropertyID},
	})
	return nil
}

func (w *NotificationWorker) onBookingCreated(ctx context.Context, e *models.BookingCreatedEvent) error {
	b := e.Booking
	if b.GuestPhone == "" {
		return nil
	}

	text := fmt.Sprintf("%s: booking for %s received, room %s, %s to %s. Status: %s.",
		e.PropertyName, b.GuestName, e.RoomNumber,
		b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"), b.Status)
	w.sendSMS(ctx, b.GuestPhone, text)
	return nil
}

func (w *NotificationWorker) onLowStock(ctx context.Context, e *models.LowStockDetectedEvent) error {
	item := e.Item
	w.pushToStaff(ctx, item.PropertyID, lowStockRoles, notify.PushMessage{
		Title: "Low stock: " + item.Name,
		Body:  fmt.Sprintf("%g %s left (minimum %g), urgency %s", item.Quantity, item.Unit, item.MinQuantity, e.Urgency),
		Data:  map[string]string{"item_id": item.ID, "property_id": item.PropertyID, "urgency": e.Urgency},
	})
	return nil
}

func (w *NotificationWorker) sendSMS(ctx context.Context, to, text string) {
	if err := w.sms.Send(ctx, to, text); err != nil {
		if errors.Is(err, notify.ErrSMSDisabled) {
			return
		}
		util.NotificationsFailedTotal.WithLabelValues("sms").Inc()
		w.logger.Warn("Failed to send SMS", zap.Error(err))
		return
	}
	util.NotificationsSentTotal.WithLabelValues("sms").Inc()
}

func (w *NotificationWorker) pushToStaff(ctx context.Context, propertyID string, roles []string, msg notify.PushMessage) {
	userIDs, err := w.recipients.ListStaffUserIDs(ctx, propertyID, roles)
	if err != nil {
		w.logger.Warn("Failed to list staff for push", zap.String("property_id", propertyID), zap.Error(err))
		return
	}
	w.pushToUsers(ctx, userIDs, msg)
}

func (w *NotificationWorker) pushToUsers(ctx context.Context, userIDs []string, msg notify.PushMessage) {
	if len(userIDs) == 0 {
		return
	}
	subs, err := w.recipients.ListPushSubscriptions(ctx, userIDs)
	if err != nil {
		w.logger.Warn("Failed to list push subscriptions", zap.Error(err))
		return
	}

	for _, sub := range subs {
		err := w.push.Send(ctx, sub, msg)
		switch {
		case err == nil:
			util.NotificationsSentTotal.WithLabelValues("push").Inc()
		case errors.Is(err, notify.ErrPushDisabled):
			return
		case errors.Is(err, notify.ErrSubscriptionGone):
			if derr := w.recipients.DeletePushSubscription(ctx, sub.Endpoint); derr != nil {
				w.logger.Warn("Failed to delete gone subscription", zap.Error(derr))
			}
		default:
			util.NotificationsFailedTotal.WithLabelValues("push").Inc()
			w.logger.Warn("Failed to send push", zap.String("user_id", sub.UserID), zap.Error(err))
		}
	}
}

func location(table, room *string) string {
	switch {
	case room != nil && *room != "":
		return "room " + *room
	case table != nil && *table != "":
		return "table " + *table
	}
	return "the front desk"
}

// RealtimeWorker relays every domain event to MQTT as row changes
type RealtimeWorker struct {
	consumer  *broker.Consumer
	events    *broker.EventHandler
	publisher ChangePublisher
	logger    *zap.Logger
}

// NewRealtimeWorker creates a new realtime relay worker
func NewRealtimeWorker(consumer *broker.Consumer, publisher ChangePublisher) *RealtimeWorker {
	w := &RealtimeWorker{
		consumer:  consumer,
		events:    broker.NewEventHandler(),
		publisher: publisher,
		logger:    util.GetLogger().With(zap.String("worker", RealtimeConsumer)),
	}
	w.events.HandleAll(w.relay)
	return w
}

// Start consumes until ctx is cancelled
func (w *RealtimeWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting realtime worker")
	return w.consumer.StartConsuming(ctx, w.events.HandleMessage)
}

// Stop stops the worker
func (w *RealtimeWorker) Stop() error {
	w.logger.Info("Stopping realtime worker")
	return w.consumer.Close()
}

func (w *RealtimeWorker) relay(ctx context.Context, base models.BaseEvent, payload []byte) error {
	changes, err := realtime.ChangesFor(base, payload)
	if err != nil {
		return err
	}
	for _, ch := range changes {
		if err := w.publisher.Publish(ch); err != nil {
			return fmt.Errorf("relay %s %s: %w", ch.Table, ch.ID, err)
		}
	}
	return nil
}
