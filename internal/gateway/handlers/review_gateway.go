package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/gateway/middleware"
	"orderflow/internal/services/reviews"
)

type ReviewHTTPHandler struct {
	reviews *reviews.Service
	log     zerolog.Logger
}

func NewReviewHTTPHandler(reviewService *reviews.Service, log zerolog.Logger) *ReviewHTTPHandler {
	return &ReviewHTTPHandler{
		reviews: reviewService,
		log:     log.With().Str("handler", "reviews").Logger(),
	}
}

func (h *ReviewHTTPHandler) CreateReview(c *gin.Context) {
	var req reviews.CreateReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHTTPHandler) ListMenuItemReviews(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	list, err := h.reviews.ListByMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
