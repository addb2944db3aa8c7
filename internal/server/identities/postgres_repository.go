package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/confideapp/confide/internal/dbx"
	"github.com/confideapp/confide/internal/shared"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

const identityColumns = `id, username, password_hash, password_salt, provider, provider_user_id, secret, created_at`

// CreateLocal inserts a locally registered identity. Username uniqueness is
// enforced by the database: ON CONFLICT DO NOTHING turns a duplicate into
// zero returned rows, which maps to shared.ErrorDuplicateUsername. The
// check and the insert are a single statement, so concurrent registrations
// for the same username cannot both succeed.
func (r *PostgresRepository) CreateLocal(ctx context.Context, identity *Identity) (*Identity, error) {

	query :=
		`INSERT INTO identities (username, password_hash, password_salt)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		identity.Username, identity.PasswordHash, identity.PasswordSalt).
		Scan(&identity.ID, &identity.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorDuplicateUsername
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return identity, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE username = $1`
	return scanIdentity(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return scanIdentity(r.db.QueryRowContext(ctx, query, id))
}

// GetOrCreateFederated returns the identity matching fid, creating it if
// absent. The insert uses ON CONFLICT DO NOTHING on the federated unique
// key; when another caller wins the race the insert returns no rows and the
// follow-up select observes the winner's row. The whole operation runs in
// one transaction and is idempotent: exactly one identity ever exists for a
// given federated key.
func (r *PostgresRepository) GetOrCreateFederated(ctx context.Context, fid FederatedID) (*Identity, error) {

	var identity *Identity

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		query :=
			`INSERT INTO identities (provider, provider_user_id)
			 VALUES ($1, $2)
			 ON CONFLICT (provider, provider_user_id) DO NOTHING
			 RETURNING id, created_at
			 `

		created := &Identity{Federated: &FederatedID{Provider: fid.Provider, ProviderUserID: fid.ProviderUserID}}
		err := tx.QueryRowContext(ctx, query, fid.Provider, fid.ProviderUserID).
			Scan(&created.ID, &created.CreatedAt)

		if err == nil {
			identity = created
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("error performing sql request: %v", err)
		}

		// lost the race: the row exists, fetch it
		query = `SELECT ` + identityColumns + ` FROM identities WHERE provider = $1 AND provider_user_id = $2`
		identity, err = scanIdentity(tx.QueryRowContext(ctx, query, fid.Provider, fid.ProviderUserID))
		return err
	})

	if err != nil {
		return nil, err
	}

	return identity, nil
}

func (r *PostgresRepository) UpdateSecret(ctx context.Context, id string, secret string) error {

	query := `UPDATE identities SET secret = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, secret)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return shared.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ListWithSecret(ctx context.Context) ([]*Identity, error) {

	query :=
		`SELECT id, secret FROM identities
		 WHERE secret IS NOT NULL AND secret <> ''
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	result := make([]*Identity, 0)
	for rows.Next() {
		identity := &Identity{}
		if err := rows.Scan(&identity.ID, &identity.Secret); err != nil {
			return nil, fmt.Errorf("error performing sql request: %v", err)
		}
		result = append(result, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, nil
}

// rowScanner covers *sql.Row and the single-row use of *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*Identity, error) {

	identity := &Identity{}
	var username, provider, providerUserID, secret sql.NullString

	err := row.Scan(&identity.ID, &username, &identity.PasswordHash, &identity.PasswordSalt,
		&provider, &providerUserID, &secret, &identity.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	identity.Username = username.String
	identity.Secret = secret.String
	if provider.Valid {
		identity.Federated = &FederatedID{Provider: provider.String, ProviderUserID: providerUserID.String}
	}

	return identity, nil
}
