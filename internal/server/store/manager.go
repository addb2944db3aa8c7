// Package store wires the database connection, the goose migrations and
// the per-aggregate repositories behind one manager.
package store

import (
	"context"
	"database/sql"

	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Identities() identities.Repository
	Sessions() sessions.Repository
}
