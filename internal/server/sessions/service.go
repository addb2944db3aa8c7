package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/confideapp/confide/internal/server/config"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/shared"
)

// PrincipalResolver re-resolves a principal by id on every token check.
// Implemented by the identities service.
type PrincipalResolver interface {
	FindByID(ctx context.Context, id string) (*identities.Identity, error)
}

// Service issues and validates session tokens. Operations are independent
// per token; no cross-session state is held in process.
type Service struct {
	repo                    Repository
	principals              PrincipalResolver
	secretKey               []byte
	sessionValidityDuration time.Duration
}

func NewService(repo Repository, principals PrincipalResolver, cfg *config.Config) *Service {
	return &Service{
		repo:                    repo,
		principals:              principals,
		secretKey:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// Issue creates a session bound to identity.ID and returns the signed
// token. The session row is written before the token leaves this method,
// so a token that exists is always resolvable until revoked or expired.
func (s *Service) Issue(ctx context.Context, identity *identities.Identity) (string, error) {

	now := time.Now()
	session := &Session{
		ID:          uuid.NewString(),
		PrincipalID: identity.ID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionValidityDuration),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", shared.ErrorInternal
	}

	token, err := GenerateToken(session.ID, session.PrincipalID, s.secretKey, s.sessionValidityDuration)
	if err != nil {
		return "", shared.ErrorInternal
	}

	return token, nil
}

// Resolve validates token and returns the identity it refers to. A token
// that is malformed, forged, expired, revoked, or whose principal no
// longer exists fails uniformly with shared.ErrorSessionInvalid.
func (s *Service) Resolve(ctx context.Context, token string) (*identities.Identity, error) {

	sessionID, principalID, err := ParseToken(token, s.secretKey)
	if err != nil {
		return nil, shared.ErrorSessionInvalid
	}

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorSessionInvalid
		}
		return nil, shared.ErrorInternal
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, shared.ErrorSessionInvalid
	}
	if session.PrincipalID != principalID {
		return nil, shared.ErrorSessionInvalid
	}

	identity, err := s.principals.FindByID(ctx, session.PrincipalID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorSessionInvalid
		}
		return nil, shared.ErrorInternal
	}

	return identity, nil
}

// Invalidate revokes the session behind token. Invalidating a malformed,
// expired or already-revoked token is a no-op, not an error.
func (s *Service) Invalidate(ctx context.Context, token string) error {

	sessionID, _, err := ParseToken(token, s.secretKey)
	if err != nil {
		return nil
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return shared.ErrorInternal
	}

	return nil
}
