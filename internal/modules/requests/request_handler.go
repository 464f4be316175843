package requests

import (
	"net/http"

	"ride-marketplace/internal/models"
	"ride-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for transport requests.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new request handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	request, err := h.svc.Create(c.Request().Context(), userID, userEmail, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, request)
}

func (h *Handler) ListMine(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	out, total, err := h.svc.ListMine(c.Request().Context(), userID, userEmail, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve requests")
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"requests": out, "total": total})
}

func (h *Handler) Get(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	request, err := h.svc.Get(c.Request().Context(), userID, userEmail, c.Param("requestId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, request)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateRequestStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	if err := h.svc.UpdateStatus(c.Request().Context(), userID, userEmail, c.Param("requestId"), req.Status); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Cancel(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.Cancel(c.Request().Context(), userID, userEmail, c.Param("requestId")); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Pay(c echo.Context) error {
	userID, userEmail, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	if err := h.svc.Pay(c.Request().Context(), userID, userEmail, c.Param("requestId"), req); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
