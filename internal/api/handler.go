package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"zamora/internal/auth"
	"zamora/internal/service"
	"zamora/internal/util"
)

// Services groups the business services the handlers call
type Services struct {
	Orders     *service.OrderService
	Folios     *service.FolioService
	Bookings   *service.BookingService
	Rooms      *service.RoomService
	Inventory  *service.InventoryService
	Menu       *service.MenuService
	Properties *service.PropertyService
	Requests   *service.ServiceRequestService
	Push       *service.PushService
}

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	auth   *auth.Authenticator
	ready  map[string]Pinger
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, authenticator *auth.Authenticator, ready map[string]Pinger) *Handler {
	return &Handler{
		svc:    svc,
		auth:   authenticator,
		ready:  ready,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, corsOrigins []string) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))
	if len(corsOrigins) > 0 {
		router.Use(corsMiddleware(corsOrigins))
	}

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/public")
	{
		public.GET("/properties/:slug", h.getStorefront)
		public.GET("/properties/:slug/menu", h.getMenu)
	}

	admin := router.Group("/api/admin", h.auth.Middleware(), h.requirePlatform())
	{
		admin.GET("/properties", h.listProperties)
		admin.POST("/properties", h.createProperty)
		admin.GET("/properties/:id", h.getProperty)
		admin.PATCH("/properties/:id", h.updateProperty)
		admin.POST("/properties/:id/staff", h.assignStaff)
		admin.PATCH("/profiles/:id/role", h.setProfileRole)
	}

	desktop := router.Group("/api/desktop", h.auth.Middleware())
	{
		property := desktop.Group("/properties/:propertyId")
		property.GET("/rooms", h.listRooms)
		property.POST("/rooms", h.createRoom)
		property.PATCH("/rooms/:roomId/status", h.updateRoomStatus)
		property.GET("/bookings", h.listBookings)
		property.POST("/bookings", h.createBooking)
		property.GET("/orders", h.listOrders)
		property.GET("/inventory", h.listInventory)
		property.POST("/inventory", h.createInventoryItem)
		property.GET("/inventory/low-stock", h.lowStock)
		property.GET("/inventory/export", h.exportInventory)
		property.GET("/service-requests", h.listServiceRequests)
		property.GET("/menu", h.listMenuItems)
		property.POST("/menu", h.createMenuItem)

		desktop.GET("/bookings/:id", h.getBooking)
		desktop.PATCH("/bookings/:id/status", h.updateBookingStatus)
		desktop.POST("/bookings/:id/charges", h.chargeBooking)
		desktop.GET("/orders/:id", h.getOrder)
		desktop.PATCH("/orders/:id/status", h.updateOrderStatus)
		desktop.GET("/folios/:id", h.getFolio)
		desktop.POST("/folios/:id/charges", h.chargeFolio)
		desktop.PATCH("/folios/:id/status", h.updateFolioStatus)
		desktop.PATCH("/inventory/:id", h.updateInventoryItem)
		desktop.DELETE("/inventory/:id", h.deleteInventoryItem)
		desktop.PATCH("/service-requests/:id/resolve", h.resolveServiceRequest)
		desktop.PATCH("/menu/:id", h.updateMenuItem)
		desktop.DELETE("/menu/:id", h.deleteMenuItem)
	}

	mobile := router.Group("/api/mobile", h.auth.Middleware())
	{
		mobile.POST("/properties/:propertyId/orders", h.placeFoodOrder)
		mobile.POST("/properties/:propertyId/bar-orders", h.placeBarOrder)
		mobile.POST("/properties/:propertyId/bookings", h.createBooking)
		mobile.POST("/properties/:propertyId/service-requests", h.createServiceRequest)
		mobile.GET("/orders/:id", h.getOrder)
		mobile.GET("/me", h.me)
		mobile.POST("/push-subscriptions", h.subscribePush)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	for name, p := range h.ready {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().Unix(),
	})
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowCredentials := true
	for _, o := range origins {
		if o == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	})
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
