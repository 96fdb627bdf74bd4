package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zamora/internal/service"
)

func (h *Handler) listProperties(c *gin.Context) {
	props, err := h.svc.Properties.ListProperties(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (h *Handler) createProperty(c *gin.Context) {
	var req service.PropertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Properties.CreateProperty(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getProperty(c *gin.Context) {
	p, err := h.svc.Properties.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateProperty(c *gin.Context) {
	var req service.PropertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Properties.UpdateProperty(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) assignStaff(c *gin.Context) {
	var req service.AssignStaffRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Properties.AssignStaff(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) setProfileRole(c *gin.Context) {
	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Properties.SetProfileRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
