package sessions

import "context"

// Repository is the persistence contract for sessions. Delete is
// idempotent: deleting an absent session is not an error.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
