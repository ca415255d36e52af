package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/auth"
	"github.com/messagely/server/internal/config"
	"github.com/messagely/server/internal/directory"
	"github.com/messagely/server/internal/ledger"
)

// NewServer builds the HTTP server with all routes mounted.
func NewServer(authService *auth.Service, dir *directory.Service, led *ledger.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	authHandlers := NewAuthHandlers(authService, logger)
	userHandlers := NewUserHandlers(dir, logger)
	messageHandlers := NewMessageHandlers(led, logger)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandlers.Register)
		authGroup.POST("/login", authHandlers.Login)
	}

	requireAuth := AuthMiddleware(authService, logger)

	users := router.Group("/users", requireAuth)
	{
		users.GET("/", userHandlers.List)
		users.GET("/:username", userHandlers.Get)
		users.GET("/:username/to", userHandlers.Inbox)
		users.GET("/:username/from", userHandlers.Outbox)
	}

	messages := router.Group("/messages", requireAuth)
	{
		messages.POST("/", messageHandlers.Send)
		messages.GET("/:id", messageHandlers.Get)
		messages.POST("/:id/read", messageHandlers.MarkRead)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
