package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ride-marketplace/internal/api"
	"ride-marketplace/internal/config"
	"ride-marketplace/internal/logging"
	"ride-marketplace/internal/modules/notifications"
	"ride-marketplace/internal/modules/offers"
	"ride-marketplace/internal/modules/requests"
	"ride-marketplace/internal/modules/users"
	"ride-marketplace/pkg/email"
	"ride-marketplace/pkg/payments"
	"ride-marketplace/pkg/realtime"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v\n", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- External Collaborators ---
	var events realtime.Publisher
	if cfg.RedisAddr != "" {
		publisher := realtime.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword)
		defer publisher.Close()
		events = publisher
	} else {
		events = &realtime.LogOnly{Logger: logger}
	}

	emailer, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
	if err != nil {
		log.Fatalf("Unable to configure email sender: %v", err)
	}
	templateManager, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Unable to parse email templates: %v", err)
	}

	paymentClient := payments.NewStripeClient(cfg.StripeAPIKey, cfg.StripeCurrency)

	googleOAuthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}

	// 5. --- Dependency Injection (Wiring everything up) ---
	// --- Users Module ---
	userRepo := users.NewRepository(dbPool)
	userService := users.NewService(userRepo, cfg.JWTSecret, googleOAuthConfig)
	userHandler := users.NewHandler(userService, cfg.ClientOrigin)

	// --- Notifications Module ---
	notificationRepo := notifications.NewRepository(dbPool)
	notificationService := notifications.NewService(notificationRepo, logger)
	notificationHandler := notifications.NewHandler(notificationService)

	// --- Requests & Offers Modules (the lifecycle) ---
	requestRepo := requests.NewRepository(dbPool)
	offerRepo := offers.NewRepository(dbPool)

	offerService := offers.NewService(offerRepo, requestRepo, userRepo,
		notificationService, events, emailer, templateManager, cfg.ClientOrigin, logger)
	offerHandler := offers.NewHandler(offerService)

	requestService := requests.NewService(requestRepo, offerRepo, userRepo,
		notificationService, events, emailer, templateManager, paymentClient, cfg.ClientOrigin, logger)
	requestHandler := requests.NewHandler(requestService)

	// 6. --- Initialize Router ---
	api.SetupRoutes(e,
		userHandler,
		requestHandler,
		offerHandler,
		notificationHandler,
		cfg.JWTSecret,
	)

	// 7. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
