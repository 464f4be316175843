package users

import (
	"errors"
	"net/http"
	"time"

	"ride-marketplace/internal/models"
	"ride-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service      ServiceInterface
	clientOrigin string
}

// NewHandler creates a new user handler.
func NewHandler(service ServiceInterface, clientOrigin string) *Handler {
	return &Handler{service: service, clientOrigin: clientOrigin}
}

func (h *Handler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
	}

	authResponse, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return utils.RespondWithError(c, http.StatusConflict, "Email address is already in use")
		}
		c.Logger().Error("Handler.Signup: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
	}

	return utils.RespondWithJSON(c, http.StatusCreated, authResponse)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return utils.RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
		}
		c.Logger().Error("Handler.Login: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log in")
	}

	return utils.RespondWithJSON(c, http.StatusOK, authResponse)
}

// GoogleLogin initiates the Google OAuth 2.0 login flow by redirecting the
// user to Google's consent screen, with the state parameter pinned in a
// secure cookie.
func (h *Handler) GoogleLogin(c echo.Context) error {
	authURL, state, err := h.service.HandleGoogleLogin()
	if err != nil {
		c.Logger().Error("Handler.GoogleLogin: failed to generate auth URL: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Could not initiate Google login")
	}

	cookie := new(http.Cookie)
	cookie.Name = "oauthstate"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = true
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles the redirect back from Google, validating the
// state parameter against the cookie before exchanging the code.
func (h *Handler) GoogleCallback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauthstate")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return utils.RespondWithError(c, http.StatusUnauthorized, "Invalid OAuth state")
	}

	authResponse, err := h.service.HandleGoogleCallback(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: ", err)
		return utils.RespondWithError(c, http.StatusInternalServerError, "Google login failed")
	}

	// Hand the token back to the frontend via redirect.
	return c.Redirect(http.StatusTemporaryRedirect,
		h.clientOrigin+"/auth/callback?token="+authResponse.AccessToken)
}

func (h *Handler) GetMyProfile(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUserProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, user)
}

func (h *Handler) UpdateMyProfile(c echo.Context) error {
	userID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var data models.UserUpdateData
	if err := c.Bind(&data); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(data); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
	}

	user, err := h.service.UpdateUserProfile(c.Request().Context(), userID, data)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, user)
}

func (h *Handler) AddVehicle(c echo.Context) error {
	driverID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.AddVehicleRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
	}

	vehicle, err := h.service.AddVehicle(c.Request().Context(), driverID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, vehicle)
}

func (h *Handler) ListMyVehicles(c echo.Context) error {
	driverID, _, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	vehicles, err := h.service.ListMyVehicles(c.Request().Context(), driverID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"vehicles": vehicles})
}
