package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/services/analytics"
)

type AnalyticsHTTPHandler struct {
	analytics *analytics.Service
	log       zerolog.Logger
}

func NewAnalyticsHTTPHandler(analyticsService *analytics.Service, log zerolog.Logger) *AnalyticsHTTPHandler {
	return &AnalyticsHTTPHandler{
		analytics: analyticsService,
		log:       log.With().Str("handler", "analytics").Logger(),
	}
}

func (h *AnalyticsHTTPHandler) Dashboard(c *gin.Context) {
	d, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
