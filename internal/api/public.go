package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getStorefront(c *gin.Context) {
	sf, err := h.svc.Properties.GetStorefront(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sf)
}

func (h *Handler) getMenu(c *gin.Context) {
	menu, err := h.svc.Properties.GetMenu(c.Request.Context(), c.Param("slug"), c.Query("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}
