package api

import (
	"net/http"

	"ride-marketplace/internal/api/middleware"
	"ride-marketplace/internal/modules/notifications"
	"ride-marketplace/internal/modules/offers"
	"ride-marketplace/internal/modules/requests"
	"ride-marketplace/internal/modules/users"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	userHandler *users.Handler,
	requestHandler *requests.Handler,
	offerHandler *offers.Handler,
	notificationHandler *notifications.Handler,
	jwtSecret string,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	driverRequired := middleware.DriverRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Group Transport Marketplace!"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
		authGroup.GET("/google/login", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
	}

	// --- Profile Routes ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetMyProfile)
		profileGroup.PUT("", userHandler.UpdateMyProfile)
		profileGroup.GET("/vehicles", userHandler.ListMyVehicles, driverRequired)
		profileGroup.POST("/vehicles", userHandler.AddVehicle, driverRequired)
	}

	// --- Request Routes (passenger side of the lifecycle) ---
	requestGroup := e.Group("/requests", authMiddleware)
	{
		requestGroup.POST("", requestHandler.Create)
		requestGroup.GET("", requestHandler.ListMine)
		requestGroup.GET("/:requestId", requestHandler.Get)
		requestGroup.PUT("/:requestId/status", requestHandler.UpdateStatus)
		requestGroup.PUT("/:requestId/cancel", requestHandler.Cancel)
		requestGroup.POST("/:requestId/pay", requestHandler.Pay)

		// Offers scoped to a request
		requestGroup.GET("/:requestId/offers", offerHandler.ListForRequest)
		requestGroup.POST("/:requestId/offers", offerHandler.Submit, driverRequired)
		requestGroup.PUT("/:requestId/offers/:offerId/accept", offerHandler.Accept)
	}

	// --- Notification Routes ---
	notificationGroup := e.Group("/notifications", authMiddleware)
	{
		notificationGroup.GET("", notificationHandler.ListMine)
		notificationGroup.PUT("/:notificationId/read", notificationHandler.MarkRead)
		notificationGroup.PUT("/read-all", notificationHandler.MarkAllRead)
	}
}
