package notifications

import (
	"net/http"

	"ride-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new notification handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListMine(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	items, total, err := h.svc.ListMine(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"notifications": items, "total": total})
}

func (h *Handler) MarkRead(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.MarkRead(c.Request().Context(), c.Param("notificationId"), userID); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.MarkAllRead(c.Request().Context(), userID); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
