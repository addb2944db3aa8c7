// Package identities implements the credential store: durable user
// principals keyed by username and/or a federated provider identity, and
// the per-identity secret payload guarded by the authorization gate.
package identities

import "time"

// FederatedID identifies a principal at an external identity provider.
// The pair is unique across all identities.
type FederatedID struct {
	Provider       string
	ProviderUserID string
}

// Identity is one user principal.
//
// Locally registered identities carry Username, PasswordHash and
// PasswordSalt. Federated identities carry Federated instead; their
// Username is empty and no password credential is ever set for them.
// Secret is empty until the user submits one.
type Identity struct {
	ID           string
	Username     string
	PasswordHash []byte
	PasswordSalt []byte
	Federated    *FederatedID
	Secret       string
	CreatedAt    time.Time
}
