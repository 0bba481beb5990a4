package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/services/promo"
)

type PromoHTTPHandler struct {
	promos *promo.Service
	log    zerolog.Logger
}

func NewPromoHTTPHandler(promoService *promo.Service, log zerolog.Logger) *PromoHTTPHandler {
	return &PromoHTTPHandler{
		promos: promoService,
		log:    log.With().Str("handler", "promo").Logger(),
	}
}

type ValidatePromoRequest struct {
	Code       string `json:"code" binding:"required"`
	OrderTotal *int64 `json:"orderTotal" binding:"required,min=0"`
}

// ValidatePromoCode always answers 200; an unusable code is reported in
// the body with valid=false.
func (h *PromoHTTPHandler) ValidatePromoCode(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	result, err := h.promos.Validate(c.Request.Context(), req.Code, *req.OrderTotal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PromoHTTPHandler) CreatePromoCode(c *gin.Context) {
	var req promo.CreatePromoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	created, err := h.promos.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *PromoHTTPHandler) ListPromoCodes(c *gin.Context) {
	list, err := h.promos.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PromoHTTPHandler) DeactivatePromoCode(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	updated, err := h.promos.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
