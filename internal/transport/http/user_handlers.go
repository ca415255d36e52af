package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/directory"
	"github.com/messagely/server/internal/policy"
)

// UserHandlers provides HTTP handlers for the user directory.
type UserHandlers struct {
	directory *directory.Service
	log       *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(dir *directory.Service, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		directory: dir,
		log:       logger,
	}
}

// List handles listing all users.
// GET /users/
func (h *UserHandlers) List(c *gin.Context) {
	profiles, err := h.directory.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	users := make([]UserSummary, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, toUserSummary(p))
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Get handles fetching a single user's profile. Only the user themselves
// may read it.
// GET /users/:username
func (h *UserHandlers) Get(c *gin.Context) {
	target := c.Param("username")
	if err := policy.CanAccessMailbox(actingUsername(c), target); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.directory.Get(c.Request.Context(), target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserDetail(user)})
}

// Inbox handles listing messages sent to the user.
// GET /users/:username/to
func (h *UserHandlers) Inbox(c *gin.Context) {
	target := c.Param("username")
	if err := policy.CanAccessMailbox(actingUsername(c), target); err != nil {
		respondError(c, h.log, err)
		return
	}

	messages, err := h.directory.Inbox(c.Request.Context(), target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Debug().Str("username", target).Int("count", len(messages)).Msg("inbox listed")
	c.JSON(http.StatusOK, gin.H{"messages": toInboxMessages(messages)})
}

// Outbox handles listing messages sent by the user.
// GET /users/:username/from
func (h *UserHandlers) Outbox(c *gin.Context) {
	target := c.Param("username")
	if err := policy.CanAccessMailbox(actingUsername(c), target); err != nil {
		respondError(c, h.log, err)
		return
	}

	messages, err := h.directory.Outbox(c.Request.Context(), target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Debug().Str("username", target).Int("count", len(messages)).Msg("outbox listed")
	c.JSON(http.StatusOK, gin.H{"messages": toOutboxMessages(messages)})
}
