// Package httpapi is the thin HTTP adapter in front of the identity and
// session services. It owns cookies, status codes and redirects; every
// decision with security weight lives in the services it calls.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/confideapp/confide/internal/logging"
	"github.com/confideapp/confide/internal/server/authz"
	"github.com/confideapp/confide/internal/server/federation"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/sessions"
)

const (
	sessionCookieName = "confide_session"
	stateCookieName   = "oauth_state"
)

type HTTPServer struct {
	address    string
	logger     logging.Logger
	identities *identities.Service
	sessions   *sessions.Service
	federation *federation.Adapter
	gate       *authz.Gate
	echo       *echo.Echo
}

func NewHTTPServer(address string, l logging.Logger, is *identities.Service, ss *sessions.Service,
	fa *federation.Adapter, gate *authz.Gate) (*HTTPServer, error) {

	s := &HTTPServer{
		address:    address,
		logger:     l.With("module", "http_server"),
		identities: is,
		sessions:   ss,
		federation: fa,
		gate:       gate,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/", s.index)
	e.GET("/healthz", s.health)

	e.POST("/api/register", s.register)
	e.POST("/api/login", s.login)
	e.POST("/api/logout", s.logout)

	e.GET("/auth/google", s.beginFederatedLogin)
	e.GET("/auth/google/callback", s.federatedCallback)

	protected := e.Group("/api/secrets", s.requireAuth)
	protected.GET("", s.listSecrets)
	protected.POST("", s.submitSecret)

	s.echo = e
	return s, nil
}

func (s *HTTPServer) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
