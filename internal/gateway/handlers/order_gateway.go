package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/database/models"
	"orderflow/internal/gateway/middleware"
	"orderflow/internal/services/orders"
	"orderflow/internal/services/pricing"
)

type OrderHTTPHandler struct {
	orders *orders.Service
	log    zerolog.Logger
}

func NewOrderHTTPHandler(orderService *orders.Service, log zerolog.Logger) *OrderHTTPHandler {
	return &OrderHTTPHandler{
		orders: orderService,
		log:    log.With().Str("handler", "orders").Logger(),
	}
}

// Request structs
type CreateOrderRequest struct {
	CustomerName  string                `json:"customerName" binding:"required,max=128"`
	Address       string                `json:"address" binding:"required"`
	Phone         string                `json:"phone" binding:"required,max=32"`
	Email         *string               `json:"email,omitempty" binding:"omitempty,email"`
	PromoCode     *string               `json:"promoCode,omitempty" binding:"omitempty,max=64"`
	PaymentMethod string                `json:"paymentMethod" binding:"required,oneof=cash card"`
	Notes         *string               `json:"notes,omitempty"`
	Items         []pricing.ItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), orders.CreateOrderInput{
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		PromoCode:     req.PromoCode,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
		Items:         req.Items,
	}, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTPHandler) GetOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHTTPHandler) ListOrders(c *gin.Context) {
	list, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHTTPHandler) ListMyOrders(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	list, err := h.orders.ListUserOrders(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHTTPHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order status"))
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHTTPHandler) CancelOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if _, err := h.orders.CancelOrder(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse("Order cancelled successfully"))
}

func (h *OrderHTTPHandler) GetOrderHistory(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	history, err := h.orders.StatusHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
