package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/confideapp/confide/internal/shared"
)

const (
	stateCookieMaxAge = 10 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type submitSecretRequest struct {
	Secret string `json:"secret" form:"secret"`
}

type secretResponse struct {
	IdentityID string `json:"identity_id"`
	Secret     string `json:"secret"`
}

func (s *HTTPServer) index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"service": "confide"})
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) register(c echo.Context) error {

	ctx := c.Request().Context()

	req := &registerRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	s.logger.Info(ctx, "Registration request")

	identity, err := s.identities.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrorValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, shared.ErrorDuplicateUsername):
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		default:
			s.logger.Error(ctx, "registration failed", "error", err.Error())
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	s.logger.Info(ctx, "Registered", "username", req.Username)
	return c.JSON(http.StatusCreated, map[string]string{"id": identity.ID})
}

func (s *HTTPServer) login(c echo.Context) error {

	ctx := c.Request().Context()

	req := &loginRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	identity, err := s.identities.VerifyCredential(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		s.logger.Error(ctx, "login failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	token, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	s.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *HTTPServer) logout(c echo.Context) error {

	ctx := c.Request().Context()

	if token := extractToken(c); token != "" {
		if err := s.sessions.Invalidate(ctx, token); err != nil {
			s.logger.Error(ctx, "logout failed", "error", err.Error())
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	s.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) beginFederatedLogin(c echo.Context) error {

	state, authURL, err := s.federation.BeginLogin()
	if err != nil {
		s.logger.Error(c.Request().Context(), "begin federated login failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, authURL)
}

func (s *HTTPServer) federatedCallback(c echo.Context) error {

	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || code == "" || state == "" || stateCookie.Value != state {
		return echo.NewHTTPError(http.StatusUnauthorized, shared.ErrorAuthenticationFailed.Error())
	}

	identity, err := s.federation.CompleteLogin(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrorProvider) {
			s.logger.Error(ctx, "provider exchange failed")
			return echo.NewHTTPError(http.StatusBadGateway, "identity provider error")
		}
		s.logger.Error(ctx, "federated login failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusUnauthorized, shared.ErrorAuthenticationFailed.Error())
	}

	token, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	s.setSessionCookie(c, token)
	return c.Redirect(http.StatusFound, "/api/secrets")
}

func (s *HTTPServer) listSecrets(c echo.Context) error {

	ctx := c.Request().Context()

	list, err := s.identities.ListSecrets(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing secrets failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	result := make([]secretResponse, 0, len(list))
	for _, identity := range list {
		result = append(result, secretResponse{IdentityID: identity.ID, Secret: identity.Secret})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *HTTPServer) submitSecret(c echo.Context) error {

	ctx := c.Request().Context()
	identity := currentIdentity(c)

	req := &submitSecretRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.Secret == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "secret is required")
	}

	if err := s.identities.SetSecret(ctx, identity.ID, req.Secret); err != nil {
		s.logger.Error(ctx, "storing secret failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
