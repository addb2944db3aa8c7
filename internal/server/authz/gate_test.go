package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/shared"
)

type fakeSessions struct {
	out *identities.Identity
	err error
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (*identities.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestAuthorize_Success(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeSessions{out: &identities.Identity{ID: "u1"}})

	identity, err := g.Authorize(context.Background(), "token")
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if identity.ID != "u1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthorize_UniformDenial(t *testing.T) {
	t.Parallel()

	// missing token, invalid session and dangling principal must be
	// indistinguishable to the caller
	cases := map[string]*Gate{
		"missing token":   NewGate(&fakeSessions{out: &identities.Identity{ID: "u1"}}),
		"invalid session": NewGate(&fakeSessions{err: shared.ErrorSessionInvalid}),
	}

	_, err := cases["missing token"].Authorize(context.Background(), "")
	if !errors.Is(err, shared.ErrorUnauthorized) {
		t.Fatalf("missing token: want ErrorUnauthorized, got %v", err)
	}

	_, err2 := cases["invalid session"].Authorize(context.Background(), "token")
	if !errors.Is(err2, shared.ErrorUnauthorized) {
		t.Fatalf("invalid session: want ErrorUnauthorized, got %v", err2)
	}

	if err.Error() != err2.Error() {
		t.Fatalf("denials differ: %q vs %q", err, err2)
	}
}

func TestAuthorize_StoreOutagePropagates(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeSessions{err: shared.ErrorInternal})

	_, err := g.Authorize(context.Background(), "token")
	if !errors.Is(err, shared.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}
