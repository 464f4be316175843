package utils

import (
	"net/http"

	"ride-marketplace/internal/models"

	"github.com/labstack/echo/v4"
)

// ExtractUserInfo pulls the authenticated user's id, email and role out of
// the echo context. The JWT middleware is responsible for setting them.
func ExtractUserInfo(c echo.Context) (userID, email, role string, err error) {
	userID, _ = c.Get("userID").(string)
	email, _ = c.Get("userEmail").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", "", c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authenticated"})
	}
	return userID, email, role, nil
}
