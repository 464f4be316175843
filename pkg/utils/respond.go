package utils

import (
	"errors"
	"net/http"
	"strconv"

	"ride-marketplace/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes a JSON payload with the given status code.
func RespondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

// RespondWithError writes a standard error body.
func RespondWithError(c echo.Context, code int, message string) error {
	return c.JSON(code, models.ErrorResponse{Message: message})
}

// HandleServiceError maps service-layer sentinel errors onto HTTP responses.
// Anything unrecognized becomes a generic 500 so internal identifiers never
// leak to the client.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidStatus):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrAccessDenied):
		return RespondWithError(c, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, models.ErrIllegalTransition),
		errors.Is(err, models.ErrRequestNotOpen),
		errors.Is(err, models.ErrOfferAlreadyDecided),
		errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, err.Error())
	default:
		c.Logger().Error(err)
		return RespondWithError(c, http.StatusInternalServerError, "Action failed, please retry")
	}
}

// GetPageLimit reads pagination query params with sane bounds.
func GetPageLimit(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
