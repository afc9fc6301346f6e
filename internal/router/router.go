package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"catalog/internal/auth"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/handler"
	"catalog/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	cacheClient *cache.Client,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	infoHandler *handler.InfoHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = validation.New()
	e.IPExtractor = ipExtractor(cfg.TrustProxy)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", RateLimit(newRateStore(cacheClient, "api", cfg.APIRateLimit, cfg.APIRateWindow)))
	guard := AccessGuard(jwtService, tokenStore)

	// Auth routes
	authLimiter := RateLimit(newRateStore(cacheClient, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow))
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register, authLimiter)
	authGroup.POST("/login", authHandler.Login, authLimiter)
	authGroup.POST("/refresh", authHandler.Refresh, authLimiter)
	authGroup.POST("/logout", authHandler.Logout, guard)

	// Info routes
	api.GET("/public/info", infoHandler.PublicInfo)
	api.GET("/private/dashboard", infoHandler.Dashboard, guard)

	// Product routes; reads are public
	products := api.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", productHandler.CreateProduct, guard)
	products.PUT("/:id", productHandler.UpdateProduct, guard)
	products.DELETE("/:id", productHandler.DeleteProduct, guard)
}

// ipExtractor reads X-Forwarded-For only behind a trusted proxy; otherwise
// the client IP is the connection's remote address.
func ipExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}
