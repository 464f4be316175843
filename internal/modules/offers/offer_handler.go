package offers

import (
	"net/http"

	"ride-marketplace/internal/models"
	"ride-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for offers.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new offer handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// Submit lets a driver post an offer against a published request.
func (h *Handler) Submit(c echo.Context) error {
	driverID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.SubmitOfferRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	offer, err := h.svc.Submit(c.Request().Context(), driverID, c.Param("requestId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, offer)
}

// ListForRequest returns all offers on a request, newest first.
func (h *Handler) ListForRequest(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	offers, err := h.svc.ListForRequest(c.Request().Context(), userID, userEmail, c.Param("requestId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"offers": offers})
}

// Accept marks an offer as the request's winner.
func (h *Handler) Accept(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.Accept(c.Request().Context(), userID, userEmail, c.Param("requestId"), c.Param("offerId")); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
