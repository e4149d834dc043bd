package baas

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// authClientImpl implements port.IdentityProvider against the BaaS auth
// REST surface (GoTrue-style endpoints under /auth/v1).
type authClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	anonKey string
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuthClient creates a new identity-provider client.
func NewAuthClient(baseURL, anonKey string, timeout time.Duration, logger *zap.Logger) port.IdentityProvider {
	return &authClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		timeout: timeout,
		logger:  logger.Named("AuthClient"),
	}
}

// userPayload is the provider's user object.
type userPayload struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	AppMetadata struct {
		Provider string `json:"provider"`
	} `json:"app_metadata"`
}

func (u *userPayload) identity() *entity.Identity {
	if u == nil || u.ID == "" {
		return nil
	}
	return &entity.Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.UserMetadata.FullName,
		AvatarURL:   u.UserMetadata.AvatarURL,
		Provider:    u.AppMetadata.Provider,
	}
}

// sessionPayload is the provider's token-grant response.
type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *userPayload `json:"user"`
}

func (p sessionPayload) session() *entity.Session {
	return &entity.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		Identity:     p.User.identity(),
	}
}

// errorPayload captures the provider's error message in its several
// shapes.
type errorPayload struct {
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func (e errorPayload) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do performs one request against the auth surface and decodes the
// response into out (when non-nil). Non-2xx responses come back as an
// error carrying the provider's message.
func (c *authClientImpl) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		req.SetBody(encoded)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Auth request failed", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("auth request to %s failed: %w", path, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Auth request failed", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("auth request to %s failed: %w", path, err)
		}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		var ep errorPayload
		_ = json.Unmarshal(resp.Body(), &ep)
		msg := ep.text()
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode())
		}
		c.logger.Warn("Auth request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("providerMessage", msg))
		return &ProviderError{Status: resp.StatusCode(), Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to decode auth response from %s: %w", path, err)
		}
	}
	return nil
}

// CurrentSession resolves the identity behind an access token. An empty
// or rejected token yields a nil identity without an error: "no session"
// is a state, not a failure.
func (c *authClientImpl) CurrentSession(ctx context.Context, accessToken string) (*entity.Identity, error) {
	if accessToken == "" {
		return nil, nil
	}
	var user userPayload
	if err := c.do(ctx, fasthttp.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && (pe.Status == fasthttp.StatusUnauthorized || pe.Status == fasthttp.StatusForbidden) {
			// Stale or revoked token: that is "no session", not a failure.
			return nil, nil
		}
		return nil, err
	}
	return user.identity(), nil
}

func (c *authClientImpl) SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	var payload sessionPayload
	err := c.do(ctx, fasthttp.MethodPost, "/auth/v1/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.session(), nil
}

func (c *authClientImpl) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	body := map[string]any{
		"email":       email,
		"create_user": true,
	}
	if redirectTo != "" {
		body["options"] = map[string]string{"email_redirect_to": redirectTo}
	}
	return c.do(ctx, fasthttp.MethodPost, "/auth/v1/otp", "", body, nil)
}

func (c *authClientImpl) SignUp(ctx context.Context, email, password string) (*entity.Session, error) {
	var payload sessionPayload
	err := c.do(ctx, fasthttp.MethodPost, "/auth/v1/signup", "",
		map[string]string{"email": email, "password": password}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.session(), nil
}

func (c *authClientImpl) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, fasthttp.MethodPost, "/auth/v1/recover", "",
		map[string]string{"email": email}, nil)
}

func (c *authClientImpl) UpdateProfile(ctx context.Context, accessToken string, update entity.ProfileUpdate) (*entity.Identity, error) {
	data := map[string]any{}
	if update.DisplayName != nil {
		data["full_name"] = *update.DisplayName
	}
	if update.AvatarURL != nil {
		data["avatar_url"] = *update.AvatarURL
	}

	var user userPayload
	err := c.do(ctx, fasthttp.MethodPut, "/auth/v1/user", accessToken,
		map[string]any{"data": data}, &user)
	if err != nil {
		return nil, err
	}
	return user.identity(), nil
}

func (c *authClientImpl) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, fasthttp.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// AuthorizeURL builds the OAuth redirect URL for an external provider.
func (c *authClientImpl) AuthorizeURL(provider, redirectTo string) string {
	return fmt.Sprintf("%s/auth/v1/authorize?provider=%s&redirect_to=%s",
		c.baseURL, url.QueryEscape(provider), url.QueryEscape(redirectTo))
}

// ExchangeCode trades an authorization code for a session (PKCE flow).
func (c *authClientImpl) ExchangeCode(ctx context.Context, code string) (*entity.Session, error) {
	var payload sessionPayload
	err := c.do(ctx, fasthttp.MethodPost, "/auth/v1/token?grant_type=pkce", "",
		map[string]string{"auth_code": code}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.session(), nil
}
