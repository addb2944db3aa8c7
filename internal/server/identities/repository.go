package identities

import "context"

// Repository is the persistence contract for identities.
//
// CreateLocal and GetOrCreateFederated must be atomic with respect to their
// uniqueness keys: two concurrent CreateLocal calls for one username resolve
// to exactly one created row (the loser gets shared.ErrorDuplicateUsername),
// and concurrent GetOrCreateFederated calls for one federated key all
// observe the single created row. A read-then-write implementation does not
// satisfy this contract.
type Repository interface {
	CreateLocal(ctx context.Context, identity *Identity) (*Identity, error)
	GetByUsername(ctx context.Context, username string) (*Identity, error)
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetOrCreateFederated(ctx context.Context, fid FederatedID) (*Identity, error)
	UpdateSecret(ctx context.Context, id string, secret string) error
	ListWithSecret(ctx context.Context) ([]*Identity, error)
}
