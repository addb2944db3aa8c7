package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/migrations"
	"github.com/confideapp/confide/internal/server/sessions"
)

type PostgresRepositoryManager struct {
	db         *sql.DB
	identities identities.Repository
	sessions   sessions.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Identities() identities.Repository {
	return m.identities
}

func (m *PostgresRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	identityRepo, err := identities.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("identity repo creation error: %w", err)
	}

	sessionRepo, err := sessions.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("session repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:         db,
		identities: identityRepo,
		sessions:   sessionRepo,
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
