package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/auth"
	"github.com/messagely/server/internal/directory"
	"github.com/messagely/server/internal/domain"
)

// AuthHandlers provides HTTP handlers for registration and login.
type AuthHandlers struct {
	authService *auth.Service
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance.
func NewAuthHandlers(authService *auth.Service, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=32"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the authentication response body.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles user registration.
// POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		respondError(c, h.log, domain.BadRequest("invalid request body"))
		return
	}

	token, err := h.authService.Register(c.Request.Context(), directory.RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user registered")
	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// Login handles user login and refreshes last_login_at on success.
// POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		respondError(c, h.log, domain.BadRequest("invalid request body"))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user logged in")
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
