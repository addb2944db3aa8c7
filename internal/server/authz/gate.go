// Package authz decides whether a presented session token may proceed to a
// protected operation.
package authz

import (
	"context"
	"errors"

	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/shared"
)

// SessionResolver validates a token and returns its principal.
// Implemented by the sessions service.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identities.Identity, error)
}

// Gate is a pure decision function over the session token; turning a
// denial into a redirect or error response is the caller's business.
type Gate struct {
	sessions SessionResolver
}

func NewGate(sessions SessionResolver) *Gate {
	return &Gate{sessions: sessions}
}

// Authorize resolves the token to an identity. Every denial — missing
// token, expired or revoked session, deleted principal — surfaces as the
// same shared.ErrorUnauthorized, so the response does not reveal which
// accounts or sessions exist. A store outage is the one exception: it
// propagates as shared.ErrorInternal rather than masquerading as a denial.
func (g *Gate) Authorize(ctx context.Context, token string) (*identities.Identity, error) {

	if token == "" {
		return nil, shared.ErrorUnauthorized
	}

	identity, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrorInternal) {
			return nil, shared.ErrorInternal
		}
		return nil, shared.ErrorUnauthorized
	}

	return identity, nil
}
