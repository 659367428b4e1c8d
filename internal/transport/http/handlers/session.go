package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/usecase"
)

// SessionAgent is the session surface of the coordinator.
type SessionAgent interface {
	SessionStatus() usecase.SessionStatus
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, form domain.Registration) (*domain.Session, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.Identity, error)
}

// SessionHandler exposes sign-in, sign-up, sign-out and profile edits. The
// bearer credential never leaves the agent; responses carry the status only.
type SessionHandler struct {
	agent SessionAgent
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(agent SessionAgent) *SessionHandler {
	return &SessionHandler{agent: agent}
}

// RegisterRoutes binds session routes to r.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("", h.Status)
	r.DELETE("", h.Logout)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.PATCH("/profile", h.UpdateProfile)
}

// Status godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} usecase.SessionStatus
// @Router /v1/session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.agent.SessionStatus())
}

// Login signs the viewer in.
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	if _, err := h.agent.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err, "failed to sign in")
		return
	}
	c.JSON(http.StatusOK, h.agent.SessionStatus())
}

// Register creates an account and signs the viewer in.
func (h *SessionHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email, password and displayName are required"))
		return
	}

	form := domain.Registration{Email: req.Email, Password: req.Password, DisplayName: req.DisplayName}
	if _, err := h.agent.Register(c.Request.Context(), form); err != nil {
		respondError(c, err, "failed to register")
		return
	}
	c.JSON(http.StatusCreated, h.agent.SessionStatus())
}

// Logout destroys the session.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.agent.Logout(c.Request.Context()); err != nil {
		respondError(c, err, "failed to sign out")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateProfile edits the viewer's profile.
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var req ProfilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	identity, err := h.agent.UpdateProfile(c.Request.Context(), domain.ProfilePatch{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondError(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, identity)
}
