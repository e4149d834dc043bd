package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/domain/entity"
	applogger "portfolio_tracker/internal/pkg/logger"
)

var testJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// fakePortfolios serves a fixed set and records mutations.
type fakePortfolios struct {
	set     []entity.Portfolio
	deleted []string
}

func (f *fakePortfolios) Portfolios() []entity.Portfolio { return f.set }

func (f *fakePortfolios) Summaries() []entity.PortfolioSummary {
	out := make([]entity.PortfolioSummary, 0, len(f.set))
	for _, p := range f.set {
		out = append(out, entity.PortfolioSummary{ID: p.ID, Name: p.Name, PositionCount: len(p.Positions)})
	}
	return out
}

func (f *fakePortfolios) Refresh(context.Context) error { return nil }

func (f *fakePortfolios) DeletePosition(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePortfolios) Clear() { f.set = nil }

type fakeMarket struct{}

func (fakeMarket) Sentiment(context.Context) (entity.SentimentIndex, error) {
	return entity.SentimentIndex{Value: 39, Classification: "Fear"}, nil
}

func (fakeMarket) Gas() entity.GasPrice { return entity.GasPrice{Gwei: 17} }

// fakeIdentity is an IdentityProvider stub for the auth flows.
type fakeIdentity struct {
	session *entity.Session
	err     error
}

func (f *fakeIdentity) CurrentSession(context.Context, string) (*entity.Identity, error) {
	if f.session == nil {
		return nil, f.err
	}
	return f.session.Identity, f.err
}

func (f *fakeIdentity) SignInWithPassword(context.Context, string, string) (*entity.Session, error) {
	return f.session, f.err
}

func (f *fakeIdentity) SendMagicLink(context.Context, string, string) error { return f.err }

func (f *fakeIdentity) SignUp(context.Context, string, string) (*entity.Session, error) {
	return f.session, f.err
}

func (f *fakeIdentity) SendPasswordReset(context.Context, string) error { return f.err }

func (f *fakeIdentity) UpdateProfile(context.Context, string, entity.ProfileUpdate) (*entity.Identity, error) {
	if f.session == nil {
		return nil, f.err
	}
	return f.session.Identity, f.err
}

func (f *fakeIdentity) SignOut(context.Context, string) error { return f.err }

func (f *fakeIdentity) AuthorizeURL(provider, redirectTo string) string {
	return "https://baas.example.com/auth/v1/authorize?provider=" + provider
}

func (f *fakeIdentity) ExchangeCode(context.Context, string) (*entity.Session, error) {
	return f.session, f.err
}

type fakeBlobs struct{}

func (fakeBlobs) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	return "https://baas.example.com/storage/v1/object/public/avatars/" + name, nil
}

type testEnv struct {
	router     *gin.Engine
	portfolios *fakePortfolios
	notifier   port.Notifier
}

func newTestEnv(t *testing.T, provider port.IdentityProvider, set []entity.Portfolio) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	portfolios := &fakePortfolios{set: set}
	dashboard := service.NewDashboardService(portfolios, 2, time.Hour, time.Hour, logger)
	notifier := service.NewToastNotifier(time.Hour, time.Hour, applogger.NewSlogAdapter())
	controller := service.NewSessionController(provider, portfolios, logger)

	cfg := &config.Config{}
	cfg.Server.PublicURL = "http://localhost:8080"
	cfg.Storage.MaxUploadBytes = 1 << 20

	dashboardHandler := NewDashboardHandler(dashboard, portfolios, notifier)
	authHandler := NewAuthHandler(provider, controller, fakeBlobs{}, notifier,
		cfg.Server.PublicURL, cfg.Storage.MaxUploadBytes, logger)
	callbackHandler := NewCallbackHandler(provider, controller, logger)
	marketHandler := NewMarketHandler(fakeMarket{})

	return &testEnv{
		router:     SetupRouter(cfg, dashboardHandler, authHandler, callbackHandler, marketHandler, logger),
		portfolios: portfolios,
		notifier:   notifier,
	}
}

func (e *testEnv) do(t *testing.T, method, target, body, cookies string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func viewCookieOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == ViewCookie {
			return ViewCookie + "=" + c.Value
		}
	}
	t.Fatal("view cookie not set")
	return ""
}

func samplePortfolios() []entity.Portfolio {
	return []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: []entity.Position{
			{
				ID:            "1",
				Token:         entity.Token{Symbol: "ETH", Name: "Ethereum"},
				Price:         3000,
				Quantity:      2,
				Invested:      4000,
				Value:         6000,
				BuyPrice:      2000,
				PnLPercent:    50,
				PortfolioName: "Main",
				Sparkline:     []float64{1, 2, 3},
			},
			{
				ID:            "2",
				Token:         entity.Token{Symbol: "SOL", Name: "Solana"},
				Price:         150,
				Quantity:      10,
				Invested:      2000,
				Value:         1500,
				BuyPrice:      200,
				PnLPercent:    -25,
				PortfolioName: "Main",
			},
		}},
	}
}

func TestDashboardEndpoint_RendersFormattedSnapshot(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, samplePortfolios())

	w := env.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	require.NoError(t, testJSON.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "main", resp.PortfolioID)
	require.Len(t, resp.Positions, 2)

	// Default order shows best performers first.
	eth := resp.Positions[0]
	assert.Equal(t, "1", eth.ID)
	assert.Equal(t, "$3,000.00", eth.Price)
	assert.Equal(t, "$4,000.00", eth.Invested)
	assert.Equal(t, "50.00%", eth.PnLPercent)
	assert.Equal(t, "up", eth.PnLTone)
	assert.NotNil(t, eth.Sparkline)
	assert.Contains(t, eth.SparklineSVG, "<svg")

	assert.Equal(t, "$6,000.00", resp.Totals.Invested)
	assert.Equal(t, "$7,500.00", resp.Totals.Value)
	assert.False(t, resp.HasMore)
}

func TestPrivacyToggle_MasksEveryNumericValue(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, samplePortfolios())

	first := env.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	cookie := viewCookieOf(t, first)

	w := env.do(t, http.MethodPost, "/api/v1/dashboard/privacy", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	require.NoError(t, testJSON.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.State.PrivacyMode)
	row := resp.Positions[0]
	assert.Equal(t, "••••••", row.Price)
	assert.Equal(t, "••••••", row.Quantity)
	assert.Equal(t, "••••••", row.Invested)
	assert.Equal(t, "••••••", row.Value)
	assert.Equal(t, "••••••", row.BuyPrice)
	assert.Equal(t, "••••••", row.PnLPercent)
	assert.Equal(t, "••••••", resp.Totals.Value)
	assert.Equal(t, "••••••", resp.Totals.PnLPercent)
	// The tone class still drives the arrow color while masked.
	assert.Equal(t, "up", row.PnLTone)

	again := env.do(t, http.MethodPost, "/api/v1/dashboard/privacy", "", cookie)
	var restored DashboardResponse
	require.NoError(t, testJSON.Unmarshal(again.Body.Bytes(), &restored))
	assert.Equal(t, "$3,000.00", restored.Positions[0].Price)
	assert.Equal(t, "50.00%", restored.Positions[0].PnLPercent)
}

func TestSortEndpoint_RejectsUnknownKey(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, samplePortfolios())

	w := env.do(t, http.MethodPost, "/api/v1/dashboard/sort", `{"key": "sparkline"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePosition_QueuesToast(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, samplePortfolios())

	first := env.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	cookie := viewCookieOf(t, first)

	w := env.do(t, http.MethodDelete, "/api/v1/positions/1", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1"}, env.portfolios.deleted)

	drained := env.do(t, http.MethodGet, "/api/v1/notifications", "", cookie)
	require.Equal(t, http.StatusOK, drained.Code)
	assert.Contains(t, drained.Body.String(), "Position deleted")

	// A second drain comes back empty.
	again := env.do(t, http.MethodGet, "/api/v1/notifications", "", cookie)
	assert.NotContains(t, again.Body.String(), "Position deleted")
}

func TestRootEndpoint_ConsumesLoginMarker(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	first := env.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	cookie := viewCookieOf(t, first)

	w := env.do(t, http.MethodGet, "/?login=success", "", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	drained := env.do(t, http.MethodGet, "/api/v1/notifications", "", cookie)
	assert.Contains(t, drained.Body.String(), "Successfully signed in")
}

func TestRootEndpoint_ConsumesErrorMarker(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	first := env.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	cookie := viewCookieOf(t, first)

	w := env.do(t, http.MethodGet, "/?error=access_denied", "", cookie)
	require.Equal(t, http.StatusFound, w.Code)

	drained := env.do(t, http.MethodGet, "/api/v1/notifications", "", cookie)
	assert.Contains(t, drained.Body.String(), "access_denied")
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	provider := &fakeIdentity{session: &entity.Session{
		AccessToken: "jwt-token",
		Identity:    &entity.Identity{ID: "user-1", Email: "a@b.c"},
	}}
	env := newTestEnv(t, provider, nil)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email": "a@b.c", "password": "hunter2"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var sessionCookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			sessionCookie = c.Value
		}
	}
	assert.Equal(t, "jwt-token", sessionCookie)

	session := env.do(t, http.MethodGet, "/api/v1/auth/session", "", "")
	assert.Contains(t, session.Body.String(), "user-1")
}

func TestLogin_RejectsBadPayload(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email": "not-an-email"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthRedirect(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	w := env.do(t, http.MethodGet, "/api/v1/auth/oauth/github", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "provider=github")
}

func TestCallback_ExchangesCodeAndRedirects(t *testing.T) {
	provider := &fakeIdentity{session: &entity.Session{
		AccessToken: "jwt-token",
		Identity:    &entity.Identity{ID: "user-1"},
	}}
	env := newTestEnv(t, provider, nil)

	w := env.do(t, http.MethodGet, "/auth/callback?code=one-time", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?login=success", w.Header().Get("Location"))
}

func TestCallback_MissingCode(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	w := env.do(t, http.MethodGet, "/auth/callback", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=auth_failed", w.Header().Get("Location"))
}

func TestCallback_ProviderError(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	w := env.do(t, http.MethodGet, "/auth/callback?error=access_denied&error_description=user+cancelled", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=user+cancelled", w.Header().Get("Location"))
}

func TestMarketEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, nil)

	sentiment := env.do(t, http.MethodGet, "/api/v1/market/sentiment", "", "")
	require.Equal(t, http.StatusOK, sentiment.Code)
	assert.Contains(t, sentiment.Body.String(), "Fear")

	gas := env.do(t, http.MethodGet, "/api/v1/market/gas", "", "")
	require.Equal(t, http.StatusOK, gas.Code)
	assert.Contains(t, gas.Body.String(), "17")
}

func TestPortfoliosEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeIdentity{}, samplePortfolios())

	w := env.do(t, http.MethodGet, "/api/v1/portfolios", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"main"`)
	assert.Contains(t, w.Body.String(), `"positionCount":2`)
}
