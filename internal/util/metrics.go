package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_orders_placed_total",
		Help: "Total number of orders placed",
	}, []string{"kind"})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_orders_failed_total",
		Help: "Total number of order placements that failed",
	}, []string{"reason"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_order_transitions_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	BookingTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_booking_transitions_total",
		Help: "Booking status transitions by target status",
	}, []string{"status"})

	FolioChargesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zamora_folio_charges_total",
		Help: "Total number of folio charges posted",
	})

	FolioChargeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zamora_folio_charge_latency_seconds",
		Help:    "Latency of the folio charge transaction",
		Buckets: prometheus.DefBuckets,
	})

	LowStockItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "zamora_low_stock_items",
		Help: "Low stock items found at the last triage, by urgency",
	}, []string{"property_id", "urgency"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_notifications_sent_total",
		Help: "Notifications delivered to providers",
	}, []string{"channel"})

	NotificationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_notifications_failed_total",
		Help: "Notifications that failed to deliver",
	}, []string{"channel"})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zamora_auth_failures_total",
		Help: "Rejected requests by reason",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
