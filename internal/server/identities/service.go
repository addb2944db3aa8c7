package identities

import (
	"context"
	"errors"

	"github.com/confideapp/confide/internal/server/password"
	"github.com/confideapp/confide/internal/shared"
)

// Service exposes the credential-store operations on top of a Repository.
// Lookup misses are translated to the uniform domain failures before they
// cross the service boundary, so callers cannot distinguish an unknown
// username from a wrong password.
type Service struct {
	repo   Repository
	hasher *password.Hasher

	// decoy credential hashed at construction time; verified against the
	// submitted password when the username does not exist, so both paths
	// burn the same hashing work.
	decoyHash []byte
	decoySalt []byte
}

func NewService(repo Repository, hasher *password.Hasher) *Service {
	decoyHash, decoySalt := hasher.Hash(shared.GenerateRandByteArray(32))
	return &Service{
		repo:      repo,
		hasher:    hasher,
		decoyHash: decoyHash,
		decoySalt: decoySalt,
	}
}

// Register creates a locally registered identity. The plaintext password is
// hashed before it reaches the repository and is never stored or logged.
func (s *Service) Register(ctx context.Context, username, plaintext string) (*Identity, error) {

	if username == "" || plaintext == "" {
		return nil, shared.ErrorValidation
	}

	hash, salt := s.hasher.Hash([]byte(plaintext))

	identity := &Identity{
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
	}

	identity, err := s.repo.CreateLocal(ctx, identity)
	if err != nil {
		if errors.Is(err, shared.ErrorDuplicateUsername) {
			return nil, shared.ErrorDuplicateUsername
		}
		return nil, shared.ErrorInternal
	}

	return identity, nil
}

// VerifyCredential looks up the identity by username and checks the
// password. Unknown usernames and wrong passwords both fail with
// shared.ErrorInvalidCredentials; the decoy verification keeps the two
// paths indistinguishable by timing as well.
func (s *Service) VerifyCredential(ctx context.Context, username, plaintext string) (*Identity, error) {

	identity, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			s.hasher.Verify([]byte(plaintext), s.decoyHash, s.decoySalt)
			return nil, shared.ErrorInvalidCredentials
		}
		return nil, shared.ErrorInternal
	}

	if identity.PasswordHash == nil {
		// federated-only identity, no local credential to match
		s.hasher.Verify([]byte(plaintext), s.decoyHash, s.decoySalt)
		return nil, shared.ErrorInvalidCredentials
	}

	if !s.hasher.Verify([]byte(plaintext), identity.PasswordHash, identity.PasswordSalt) {
		return nil, shared.ErrorInvalidCredentials
	}

	return identity, nil
}

// FindByID resolves a principal by id. A miss is reported as
// shared.ErrorNotFound; callers decide how that surfaces.
func (s *Service) FindByID(ctx context.Context, id string) (*Identity, error) {

	identity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorNotFound
		}
		return nil, shared.ErrorInternal
	}

	return identity, nil
}

// FindOrCreateFederated resolves a federated provider identity to a local
// one, creating it on first login. Idempotent under concurrent calls with
// the same key.
func (s *Service) FindOrCreateFederated(ctx context.Context, provider, providerUserID string) (*Identity, error) {

	if provider == "" || providerUserID == "" {
		return nil, shared.ErrorValidation
	}

	identity, err := s.repo.GetOrCreateFederated(ctx, FederatedID{Provider: provider, ProviderUserID: providerUserID})
	if err != nil {
		return nil, shared.ErrorInternal
	}

	return identity, nil
}

// SetSecret stores the identity's secret payload.
func (s *Service) SetSecret(ctx context.Context, id string, secret string) error {

	err := s.repo.UpdateSecret(ctx, id, secret)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrorNotFound
		}
		return shared.ErrorInternal
	}

	return nil
}

// ListSecrets returns every identity that has a non-empty secret.
func (s *Service) ListSecrets(ctx context.Context) ([]*Identity, error) {

	list, err := s.repo.ListWithSecret(ctx)
	if err != nil {
		return nil, shared.ErrorInternal
	}

	return list, nil
}
