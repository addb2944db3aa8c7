package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/confideapp/confide/internal/shared"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, session *Session) error {

	query :=
		`INSERT INTO sessions (id, principal_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.PrincipalID, session.CreatedAt, session.ExpiresAt)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Session, error) {

	query :=
		`SELECT id, principal_id, created_at, expires_at FROM sessions
		 WHERE id = $1
		 `

	session := &Session{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&session.ID, &session.PrincipalID, &session.CreatedAt, &session.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return session, nil
}

// Delete removes the session row. Deleting a session that does not exist
// is a no-op, which makes logout idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `DELETE FROM sessions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}
