package echo

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	serrors "github.com/pagemark/readsync/errors"
	"github.com/pagemark/readsync/internal/provider"
	"github.com/pagemark/readsync/services"
)

// AuthFlow is the orchestrator surface the HTTP layer depends on.
type AuthFlow interface {
	Initiate(ctx context.Context, deviceID string) (*services.InitiateResult, error)
	Complete(ctx context.Context, code, state string) (*services.CompleteResult, error)
	Poll(ctx context.Context, sessionToken string) (*services.PollResult, error)
	Refresh(ctx context.Context, bearer string) (*services.TokenResult, error)
	Logout(ctx context.Context, bearer string) error
}

// AuthAPI exposes the sign-in protocol over HTTP.
type AuthAPI struct {
	auth AuthFlow
}

func NewAuthAPI(auth AuthFlow) *AuthAPI {
	return &AuthAPI{auth: auth}
}

// RegisterRoutes registers the protocol routes.
func (a *AuthAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/request", a.RequestHandler)
	e.GET("/api/auth/status", a.StatusHandler)
	e.POST("/api/auth/refresh", a.RefreshHandler)
	e.POST("/api/auth/logout", a.LogoutHandler)
	e.GET("/api/callback", a.CallbackHandler)
}

// response is the JSON envelope all API endpoints use: a success flag, a
// message and an optional data payload. The device client branches on the
// success field, so its shape is load-bearing.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, response{Success: true, Message: message, Data: data})
}

func failure(c echo.Context, status int, message string) error {
	return c.JSON(status, response{Success: false, Message: message})
}

type authRequestBody struct {
	DeviceID string `json:"device_id"`
}

// RequestHandler starts a sign-in session for a device.
func (a *AuthAPI) RequestHandler(c echo.Context) error {
	var body authRequestBody
	if err := c.Bind(&body); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := a.auth.Initiate(c.Request().Context(), body.DeviceID)
	if err != nil {
		if errors.Is(err, serrors.ErrInvalidDeviceID) {
			return failure(c, http.StatusBadRequest, "device_id must be 1-100 characters")
		}
		log.Error().Err(err).Msg("failed to initiate sign-in")
		return failure(c, http.StatusInternalServerError, "internal server error")
	}

	return success(c, "Auth request created", result)
}

// StatusHandler reports the session's progress to the polling device.
func (a *AuthAPI) StatusHandler(c echo.Context) error {
	sessionToken := c.QueryParam("session_token")
	if sessionToken == "" {
		return failure(c, http.StatusBadRequest, "session_token is required")
	}

	result, err := a.auth.Poll(c.Request().Context(), sessionToken)
	if err != nil {
		switch {
		case errors.Is(err, serrors.ErrSessionNotFound):
			return failure(c, http.StatusNotFound, "session not found")
		case errors.Is(err, serrors.ErrSessionExpired):
			return failure(c, http.StatusGone, "session expired")
		case errors.Is(err, serrors.ErrInvalidSessionState):
			return failure(c, http.StatusBadRequest, "invalid session status")
		default:
			log.Error().Err(err).Msg("failed to poll session")
			return failure(c, http.StatusInternalServerError, "internal server error")
		}
	}

	return success(c, "", result)
}

// CallbackHandler is the provider redirect target. It is opened in the
// user's browser, not by the device, so outcomes are rendered as terminal
// HTML pages rather than JSON.
func (a *AuthAPI) CallbackHandler(c echo.Context) error {
	if errCode := c.QueryParam("error"); errCode != "" {
		log.Warn().
			Str("error", errCode).
			Str("error_description", c.QueryParam("error_description")).
			Msg("provider callback returned an error")
		return renderErrorPage(c, "Authorization Failed",
			provider.CallbackError(errCode, c.QueryParam("error_description")))
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return renderErrorPage(c, "Invalid Request", "Missing required parameters.")
	}

	result, err := a.auth.Complete(c.Request().Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, serrors.ErrSessionNotFound):
			return renderErrorPage(c, "Authorization Failed", "Unknown sign-in session. Please start over on your Kindle.")
		case errors.Is(err, serrors.ErrSessionExpired):
			return renderErrorPage(c, "Session Expired", "The sign-in session has expired. Please start over on your Kindle.")
		case errors.Is(err, serrors.ErrSessionConflict):
			return renderErrorPage(c, "Already Processed", "This sign-in link was already used. Check your Kindle; it may already be signed in.")
		case errors.Is(err, serrors.ErrProviderExchange):
			return renderErrorPage(c, "Authorization Failed", "GitHub did not complete the authorization. Please start over on your Kindle.")
		default:
			log.Error().Err(err).Msg("callback processing failed")
			return renderErrorPage(c, "Server Error", "An unexpected error occurred. Please try again later.")
		}
	}

	return renderSuccessPage(c, result.User.Username, result.Device.DeviceID)
}

// RefreshHandler rotates the presented bearer token.
func (a *AuthAPI) RefreshHandler(c echo.Context) error {
	bearer, ok := bearerToken(c)
	if !ok {
		return failure(c, http.StatusUnauthorized, "Authorization header is required")
	}

	result, err := a.auth.Refresh(c.Request().Context(), bearer)
	if err != nil {
		if errors.Is(err, serrors.ErrUnauthorized) {
			return failure(c, http.StatusUnauthorized, "invalid or expired token")
		}
		log.Error().Err(err).Msg("failed to refresh token")
		return failure(c, http.StatusInternalServerError, "internal server error")
	}

	return success(c, "Token refreshed", result)
}

// LogoutHandler revokes every token of the presented token's owner.
func (a *AuthAPI) LogoutHandler(c echo.Context) error {
	bearer, ok := bearerToken(c)
	if !ok {
		return failure(c, http.StatusUnauthorized, "Authorization header is required")
	}

	if err := a.auth.Logout(c.Request().Context(), bearer); err != nil {
		if errors.Is(err, serrors.ErrUnauthorized) {
			return failure(c, http.StatusUnauthorized, "invalid or expired token")
		}
		log.Error().Err(err).Msg("failed to log out")
		return failure(c, http.StatusInternalServerError, "internal server error")
	}

	return success(c, "Logged out", nil)
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
