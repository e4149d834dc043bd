package restapi

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// AuthHandler fronts the identity provider: sign in flows, profile
// edits, avatar uploads and the provider's session-change events.
type AuthHandler struct {
	provider   port.IdentityProvider
	controller port.SessionController
	blobs      port.BlobStore
	notifier   port.Notifier
	publicURL  string
	maxUpload  int64
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	provider port.IdentityProvider,
	controller port.SessionController,
	blobs port.BlobStore,
	notifier port.Notifier,
	publicURL string,
	maxUpload int64,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:   provider,
		controller: controller,
		blobs:      blobs,
		notifier:   notifier,
		publicURL:  strings.TrimRight(publicURL, "/"),
		maxUpload:  maxUpload,
		logger:     logger.Named("AuthHandler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginHandler performs the password sign-in and stores the session
// token in a cookie.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.provider.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Password sign-in failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	setAccessToken(c, session.AccessToken)
	h.controller.Notify(c.Request.Context(), session.Identity)
	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Successfully signed in",
	})

	c.JSON(http.StatusOK, gin.H{"identity": session.Identity})
}

// MagicLinkHandler sends a one-time sign-in link.
func (h *AuthHandler) MagicLinkHandler(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirectTo := h.publicURL + "/auth/callback/complete"
	if err := h.provider.SendMagicLink(c.Request.Context(), req.Email, redirectTo); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:        entity.ToastInfo,
		Title:       "Check your email",
		Description: "We sent a sign-in link to " + req.Email,
	})
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// SignUpHandler registers a new account. Depending on provider settings
// the response carries a live session or the account awaits email
// confirmation.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if session != nil && session.AccessToken != "" {
		setAccessToken(c, session.AccessToken)
		h.controller.Notify(c.Request.Context(), session.Identity)
		c.JSON(http.StatusOK, gin.H{"identity": session.Identity})
		return
	}

	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:        entity.ToastInfo,
		Title:       "Confirm your email",
		Description: "We sent a confirmation link to " + req.Email,
	})
	c.JSON(http.StatusOK, gin.H{"confirmationRequired": true})
}

// RecoverHandler sends a password-recovery email.
func (h *AuthHandler) RecoverHandler(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.provider.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:        entity.ToastInfo,
		Title:       "Check your email",
		Description: "We sent a password reset link to " + req.Email,
	})
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// LogoutHandler signs the user out. The cookie is cleared even when the
// provider call fails.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	h.controller.SignOut(c.Request.Context(), accessToken(c))
	clearAccessToken(c)
	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Signed out",
	})
	c.JSON(http.StatusOK, gin.H{"signedOut": true})
}

// SessionHandler returns the current identity, null when anonymous.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"identity": h.controller.Current()})
}

type profileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// ProfileHandler patches the signed-in user's profile metadata.
func (h *AuthHandler) ProfileHandler(c *gin.Context) {
	token := accessToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DisplayName == nil && req.AvatarURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	identity, err := h.provider.UpdateProfile(c.Request.Context(), token, entity.ProfileUpdate{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.controller.Notify(c.Request.Context(), identity)
	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Profile updated",
	})
	c.JSON(http.StatusOK, gin.H{"identity": identity})
}

// AvatarHandler accepts a multipart image upload, stores it in the blob
// bucket and points the profile at the public URL.
func (h *AuthHandler) AvatarHandler(c *gin.Context) {
	token := accessToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
		return
	}
	if file.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "avatar exceeds the upload limit"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar must be an image"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "avatar exceeds the upload limit"})
		return
	}

	name := uuid.NewString() + path.Ext(file.Filename)
	avatarURL, err := h.blobs.Upload(c.Request.Context(), name, contentType, data)
	if err != nil {
		h.logger.Error("Avatar upload failed", zap.String("object", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.provider.UpdateProfile(c.Request.Context(), token, entity.ProfileUpdate{
		AvatarURL: &avatarURL,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.controller.Notify(c.Request.Context(), identity)
	h.notifier.Push(viewSessionID(c), entity.Toast{
		Kind:  entity.ToastSuccess,
		Title: "Avatar updated",
	})
	c.JSON(http.StatusOK, gin.H{"identity": identity, "avatarUrl": avatarURL})
}

// OAuthHandler redirects the browser to the external provider's consent
// screen.
func (h *AuthHandler) OAuthHandler(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing provider"})
		return
	}

	redirectTo := h.publicURL + "/auth/callback"
	c.Redirect(http.StatusFound, h.provider.AuthorizeURL(provider, redirectTo))
}

type sessionEventRequest struct {
	Event    string           `json:"event" binding:"required"`
	Identity *entity.Identity `json:"identity"`
}

// EventsHandler ingests provider-pushed session-change events. Redundant
// events (same identity id) are dropped by the controller.
func (h *AuthHandler) EventsHandler(c *gin.Context) {
	var req sessionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Event {
	case "SIGNED_IN", "TOKEN_REFRESHED", "USER_UPDATED":
		h.controller.Notify(c.Request.Context(), req.Identity)
	case "SIGNED_OUT":
		h.controller.Notify(c.Request.Context(), nil)
	default:
		h.logger.Debug("Ignoring session event", zap.String("event", req.Event))
	}

	c.JSON(http.StatusOK, gin.H{"accepted": true})
}
