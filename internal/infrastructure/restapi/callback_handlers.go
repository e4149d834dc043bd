package restapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
)

// CallbackHandler completes the OAuth and magic-link flows. The provider
// redirects here; the outcome is folded into a root-URL marker the
// dashboard turns into a toast.
type CallbackHandler struct {
	provider   port.IdentityProvider
	controller port.SessionController
	logger     *zap.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(provider port.IdentityProvider, controller port.SessionController, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{
		provider:   provider,
		controller: controller,
		logger:     logger.Named("CallbackHandler"),
	}
}

// CallbackHandler handles the code-flow landing: the authorization code
// is exchanged for a session, the token cookie is set and the browser is
// sent back to the root with a success marker. Any failure becomes an
// error marker instead.
func (h *CallbackHandler) CallbackHandler(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		description := c.Query("error_description")
		if description == "" {
			description = errParam
		}
		h.logger.Warn("Provider returned an auth error",
			zap.String("error", errParam),
			zap.String("description", description))
		c.Redirect(http.StatusFound, "/?error="+url.QueryEscape(description))
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/?error=auth_failed")
		return
	}

	session, err := h.provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Code exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/?error="+url.QueryEscape(err.Error()))
		return
	}

	setAccessToken(c, session.AccessToken)
	h.controller.Notify(c.Request.Context(), session.Identity)
	c.Redirect(http.StatusFound, "/?login=success")
}

// completePage bridges the fragment flow: magic links deliver the token
// in the URL fragment, which never reaches the server, so a tiny page
// re-posts it as a query parameter.
const completePage = `<!doctype html>
<html>
<head><title>Signing in...</title></head>
<body>
<script>
var params = new URLSearchParams(window.location.hash.slice(1));
var token = params.get("access_token");
if (token) {
  window.location.replace("/auth/callback/complete?access_token=" + encodeURIComponent(token));
} else {
  window.location.replace("/?error=auth_failed");
}
</script>
</body>
</html>`

// CompleteHandler finishes the fragment flow. Without a token query
// parameter it serves the bridging page; with one it resolves the
// session and redirects with the outcome marker.
func (h *CallbackHandler) CompleteHandler(c *gin.Context) {
	token := c.Query("access_token")
	if token == "" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(completePage))
		return
	}

	identity, err := h.provider.CurrentSession(c.Request.Context(), token)
	if err != nil || identity == nil {
		if err != nil {
			h.logger.Error("Token verification failed", zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/?error=auth_failed")
		return
	}

	setAccessToken(c, token)
	h.controller.Notify(c.Request.Context(), identity)
	c.Redirect(http.StatusFound, "/?login=success")
}
