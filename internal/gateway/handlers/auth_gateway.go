package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderflow/internal/database/models"
	"orderflow/internal/gateway/middleware"
	"orderflow/internal/services/users"
)

type AuthHTTPHandler struct {
	users *users.Service
	log   zerolog.Logger
}

func NewAuthHTTPHandler(userService *users.Service, log zerolog.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		users: userService,
		log:   log.With().Str("handler", "auth").Logger(),
	}
}

type AuthResponse struct {
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

// --- Authentication ---

func (h *AuthHTTPHandler) Register(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:    res.User,
		Token:   res.Token,
		Message: "Registration successful",
	})
}

func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req users.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	res, err := h.users.Authenticate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:    res.User,
		Token:   res.Token,
		Message: "Login successful",
	})
}

func (h *AuthHTTPHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	if err := h.users.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse("Logout successful"))
}

func (h *AuthHTTPHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	user, err := h.users.Get(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
