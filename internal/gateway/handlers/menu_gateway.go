package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/services/menu"
)

type MenuHTTPHandler struct {
	menu *menu.Service
	log  zerolog.Logger
}

func NewMenuHTTPHandler(menuService *menu.Service, log zerolog.Logger) *MenuHTTPHandler {
	return &MenuHTTPHandler{
		menu: menuService,
		log:  log.With().Str("handler", "menu").Logger(),
	}
}

func (h *MenuHTTPHandler) ListMenuItems(c *gin.Context) {
	var filter menu.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	items, err := h.menu.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *MenuHTTPHandler) ListCategories(c *gin.Context) {
	categories, err := h.menu.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *MenuHTTPHandler) GetMenuItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	item, err := h.menu.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuHTTPHandler) CreateMenuItem(c *gin.Context) {
	var req menu.CreateMenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	item, err := h.menu.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *MenuHTTPHandler) UpdateMenuItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req menu.UpdateMenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	item, err := h.menu.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuHTTPHandler) DeleteMenuItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.menu.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse("Menu item deleted"))
}
