package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zamora/internal/authz"
	"zamora/internal/service"
	"zamora/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func propertyResource(c *gin.Context, kind string) authz.Resource {
	return authz.Resource{Kind: kind, PropertyID: c.Param("propertyId")}
}

// Rooms

func (h *Handler) listRooms(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindRoom), authz.ActionRead) {
		return
	}
	rooms, err := h.svc.Rooms.ListRooms(c.Request.Context(), c.Param("propertyId"), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handler) createRoom(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindRoom), authz.ActionCreate) {
		return
	}
	var req service.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.svc.Rooms.CreateRoom(c.Request.Context(), c.Param("propertyId"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *Handler) updateRoomStatus(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := h.svc.Rooms.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if room.PropertyID != c.Param("propertyId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindRoom, PropertyID: room.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err = h.svc.Rooms.UpdateStatus(ctx, room.ID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Bookings

func (h *Handler) listBookings(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindBooking), authz.ActionRead) {
		return
	}
	bookings, err := h.svc.Bookings.ListBookings(c.Request.Context(), c.Param("propertyId"), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// createBooking serves staff and guests. Callers allowed to manage bookings at
// the property create confirmed bookings; self-service bookings start pending.
func (h *Handler) createBooking(c *gin.Context) {
	res := propertyResource(c, authz.KindBooking)
	if !h.authorize(c, res, authz.ActionCreate) {
		return
	}
	var req service.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	caller := callerOf(c)
	confirmed := authz.Decide(caller, res, authz.ActionUpdate).Allowed
	guestID := ""
	if !confirmed {
		guestID = caller.UserID
	}

	booking, err := h.svc.Bookings.CreateBooking(c.Request.Context(), res.PropertyID, guestID, confirmed, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) getBooking(c *gin.Context) {
	booking, err := h.svc.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	res := authz.Resource{Kind: authz.KindBooking, PropertyID: booking.PropertyID, OwnerID: deref(booking.GuestID)}
	if !h.authorize(c, res, authz.ActionRead) {
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) updateBookingStatus(c *gin.Context) {
	ctx := c.Request.Context()
	booking, err := h.svc.Bookings.GetBooking(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindBooking, PropertyID: booking.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	tr, err := h.svc.Bookings.UpdateStatus(ctx, booking.ID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": tr.Booking, "room": tr.Room})
}

func (h *Handler) chargeBooking(c *gin.Context) {
	ctx := c.Request.Context()
	booking, err := h.svc.Bookings.GetBooking(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindFolio, PropertyID: booking.PropertyID}, authz.ActionCreate) {
		return
	}

	var req service.ChargeRequest
	if !bindJSON(c, &req) {
		return
	}
	folio, item, err := h.svc.Folios.AddChargeToBooking(ctx, booking.ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"folio": folio, "item": item})
}

// Orders

func (h *Handler) listOrders(c *gin.Context) {
	f := store.OrderFilter{Status: c.Query("status"), Kind: c.Query("kind")}
	if !h.authorize(c, propertyResource(c, authz.OrderKind(f.Kind)), authz.ActionRead) {
		return
	}
	orders, err := h.svc.Orders.ListOrders(c.Request.Context(), c.Param("propertyId"), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	res := authz.Resource{Kind: authz.OrderKind(order.Kind), PropertyID: order.PropertyID, OwnerID: deref(order.CreatedBy)}
	if !h.authorize(c, res, authz.ActionRead) {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.svc.Orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.OrderKind(order.Kind), PropertyID: order.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.svc.Orders.UpdateStatus(ctx, order.ID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Folios

func (h *Handler) getFolio(c *gin.Context) {
	folio, err := h.svc.Folios.GetFolio(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindFolio, PropertyID: folio.PropertyID}, authz.ActionRead) {
		return
	}
	c.JSON(http.StatusOK, folio)
}

func (h *Handler) chargeFolio(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Folios.GetFolio(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindFolio, PropertyID: current.PropertyID}, authz.ActionCreate) {
		return
	}

	var req service.ChargeRequest
	if !bindJSON(c, &req) {
		return
	}
	folio, item, err := h.svc.Folios.AddCharge(ctx, current.ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"folio": folio, "item": item})
}

func (h *Handler) updateFolioStatus(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Folios.GetFolio(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindFolio, PropertyID: current.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	folio, err := h.svc.Folios.UpdateStatus(ctx, current.ID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folio)
}

// Inventory

func (h *Handler) listInventory(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindInventory), authz.ActionRead) {
		return
	}
	items, err := h.svc.Inventory.ListItems(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindInventory), authz.ActionCreate) {
		return
	}
	var req service.InventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Inventory.CreateItem(c.Request.Context(), c.Param("propertyId"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Inventory.GetItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindInventory, PropertyID: current.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req service.InventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Inventory.UpdateItem(ctx, current.ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteInventoryItem(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Inventory.GetItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindInventory, PropertyID: current.PropertyID}, authz.ActionDelete) {
		return
	}
	if err := h.svc.Inventory.DeleteItem(ctx, current.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lowStock(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindInventory), authz.ActionRead) {
		return
	}
	low, err := h.svc.Inventory.LowStock(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, low)
}

func (h *Handler) exportInventory(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindInventory), authz.ActionRead) {
		return
	}
	propertyID := c.Param("propertyId")
	data, err := h.svc.Inventory.Export(c.Request.Context(), propertyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s-%s.xlsx", propertyID, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Service requests

func (h *Handler) listServiceRequests(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindServiceRequest), authz.ActionRead) {
		return
	}
	reqs, err := h.svc.Requests.List(c.Request.Context(), c.Param("propertyId"), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) resolveServiceRequest(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Requests.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindServiceRequest, PropertyID: current.PropertyID}, authz.ActionUpdate) {
		return
	}
	req, err := h.svc.Requests.Resolve(ctx, current.ID, callerOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Menu

func (h *Handler) listMenuItems(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindMenu), authz.ActionRead) {
		return
	}
	items, err := h.svc.Menu.ListItems(c.Request.Context(), c.Param("propertyId"), c.Query("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createMenuItem(c *gin.Context) {
	if !h.authorize(c, propertyResource(c, authz.KindMenu), authz.ActionCreate) {
		return
	}
	var req service.MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Menu.CreateItem(c.Request.Context(), c.Param("propertyId"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Menu.GetItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindMenu, PropertyID: current.PropertyID}, authz.ActionUpdate) {
		return
	}

	var req service.MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Menu.UpdateItem(ctx, current.ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.svc.Menu.GetItem(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.authorize(c, authz.Resource{Kind: authz.KindMenu, PropertyID: current.PropertyID}, authz.ActionDelete) {
		return
	}
	if err := h.svc.Menu.DeleteItem(ctx, current.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
