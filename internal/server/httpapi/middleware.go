package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/shared"
)

const identityContextKey = "identity"

// requireAuth gates protected routes. The denial is uniform: the response
// never says whether a token was missing, expired, revoked or referenced a
// deleted principal.
func (s *HTTPServer) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {

		identity, err := s.gate.Authorize(c.Request().Context(), extractToken(c))
		if err != nil {
			if errors.Is(err, shared.ErrorInternal) {
				s.logger.Error(c.Request().Context(), "authorization check failed", "error", err.Error())
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}

		c.Set(identityContextKey, identity)
		return next(c)
	}
}

// extractToken reads the session token from the Authorization header
// (Bearer scheme) or, failing that, from the session cookie.
func extractToken(c echo.Context) string {

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func currentIdentity(c echo.Context) *identities.Identity {
	identity, _ := c.Get(identityContextKey).(*identities.Identity)
	return identity
}
