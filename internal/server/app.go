// Package server initializes and runs the Confide application server.
// It wires the repositories, the identity and session services, the
// federation adapter and the HTTP endpoint, and handles graceful shutdown
// on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/confideapp/confide/internal/logging"
	"github.com/confideapp/confide/internal/server/authz"
	"github.com/confideapp/confide/internal/server/config"
	"github.com/confideapp/confide/internal/server/federation"
	"github.com/confideapp/confide/internal/server/httpapi"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/password"
	"github.com/confideapp/confide/internal/server/sessions"
	"github.com/confideapp/confide/internal/server/store"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	identityService *identities.Service
	sessionService  *sessions.Service
	federation      *federation.Adapter
	gate            *authz.Gate
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	m, err := store.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	is := identities.NewService(m.Identities(), password.NewHasher())
	ss := sessions.NewService(m.Sessions(), is, c)
	fa := federation.NewAdapter(is, c)
	gate := authz.NewGate(ss)

	return &App{
		config:          c,
		logger:          logger,
		identityService: is,
		sessionService:  ss,
		federation:      fa,
		gate:            gate,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.identityService, app.sessionService, app.federation, app.gate)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
