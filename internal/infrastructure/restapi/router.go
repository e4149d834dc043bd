// Package restapi wires the HTTP surface: routing, cookies and the
// request handlers.
package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/pkg/utils"
)

const (
	// ViewCookie identifies one dashboard view session (one "open tab").
	ViewCookie = "pt_view"
	// SessionCookie carries the identity provider's access token.
	SessionCookie = "pt_session"

	cookieMaxAge = 60 * 60 * 24 * 7
)

// viewSessionMiddleware guarantees every request carries a view-session id,
// minting one on first contact.
func viewSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ViewCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(ViewCookie, id, cookieMaxAge, "/", "", false, true)
		}
		c.Set(ViewCookie, id)
		c.Next()
	}
}

func viewSessionID(c *gin.Context) string {
	if v, ok := c.Get(ViewCookie); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func accessToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

func setAccessToken(c *gin.Context, token string) {
	c.SetCookie(SessionCookie, token, cookieMaxAge, "/", "", false, true)
}

func clearAccessToken(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// SetupRouter builds the Gin engine with all middleware and routes.
func SetupRouter(
	cfg *config.Config,
	dashboard *DashboardHandler,
	auth *AuthHandler,
	callback *CallbackHandler,
	market *MarketHandler,
	zapLogger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())
	router.Use(viewSessionMiddleware())

	router.GET("/", dashboard.RootHandler)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolios", dashboard.GetPortfoliosHandler)
		v1.GET("/dashboard", dashboard.GetDashboardHandler)
		v1.POST("/dashboard/portfolio", dashboard.SelectPortfolioHandler)
		v1.POST("/dashboard/search", dashboard.SearchHandler)
		v1.POST("/dashboard/sort", dashboard.SortHandler)
		v1.POST("/dashboard/view", dashboard.ViewModeHandler)
		v1.POST("/dashboard/privacy", dashboard.PrivacyHandler)
		v1.POST("/dashboard/more", dashboard.LoadMoreHandler)
		v1.POST("/dashboard/menu", dashboard.MenuHandler)
		v1.POST("/refresh", dashboard.RefreshHandler)
		v1.DELETE("/positions/:id", dashboard.DeletePositionHandler)

		v1.GET("/market/sentiment", market.SentimentHandler)
		v1.GET("/market/gas", market.GasHandler)

		v1.GET("/notifications", dashboard.NotificationsHandler)

		v1.POST("/auth/login", auth.LoginHandler)
		v1.POST("/auth/otp", auth.MagicLinkHandler)
		v1.POST("/auth/signup", auth.SignUpHandler)
		v1.POST("/auth/recover", auth.RecoverHandler)
		v1.POST("/auth/logout", auth.LogoutHandler)
		v1.GET("/auth/session", auth.SessionHandler)
		v1.PUT("/auth/profile", auth.ProfileHandler)
		v1.POST("/auth/avatar", auth.AvatarHandler)
		v1.GET("/auth/oauth/:provider", auth.OAuthHandler)
		v1.POST("/auth/events", auth.EventsHandler)
	}

	router.GET("/auth/callback", callback.CallbackHandler)
	router.GET("/auth/callback/complete", callback.CompleteHandler)

	if cfg.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
		router.GET(cfg.Swagger.Path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
			ginSwagger.URL("/docs/swagger.yaml")))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
