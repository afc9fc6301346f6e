package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"catalog/docs"
	"catalog/internal/auth"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/db"
	"catalog/internal/handler"
	"catalog/internal/repository"
	"catalog/internal/router"
	"catalog/internal/service"
)

//go:generate swag init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs --outputTypes go

const shutdownTimeout = 10 * time.Second

// @title Product Catalog API
// @version 1.0
// @description Product catalog API with cookie based JWT authentication.
// @host localhost:3000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The accessToken cookie is accepted as well.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if !cacheClient.Enabled() {
		log.Println("REDIS_ADDR not set: product cache and token revocation disabled, rate limits kept in memory")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		auth.WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, hasher)
	productService := service.NewProductService(productRepo, cacheClient)

	// Initialize handlers
	cookies := handler.Cookies{
		Secure:     cfg.IsProduction(),
		AccessTTL:  jwtService.AccessTTL(),
		RefreshTTL: jwtService.RefreshTTL(),
	}
	authHandler := handler.NewAuthHandler(authService, cookies)
	productHandler := handler.NewProductHandler(productService)
	infoHandler := handler.NewInfoHandler()

	e.HTTPErrorHandler = handler.NewErrorHandler(cookies, cfg.IsProduction()).Handle

	// Register routes
	router.Register(
		e,
		cfg,
		cacheClient,
		jwtService,
		tokenStore,
		authHandler,
		productHandler,
		infoHandler,
	)

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	docs.SwaggerInfo.Host = swaggerHost
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", swaggerHost)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
