// Package federation implements federated login against an OAuth2 identity
// provider: it produces the authorization redirect, exchanges the callback
// code for the provider's user id, and resolves that id to a local identity
// via find-or-create.
package federation

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/confideapp/confide/internal/server/config"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/shared"
)

// IdentityResolver maps a provider user id to a local identity.
// Implemented by the identities service.
type IdentityResolver interface {
	FindOrCreateFederated(ctx context.Context, provider, providerUserID string) (*identities.Identity, error)
}

// Adapter drives one provider. Scopes are kept to the minimum needed to
// obtain a stable user identifier.
type Adapter struct {
	oauth       *oauth2.Config
	identities  IdentityResolver
	provider    string
	userInfoURL string
	timeout     time.Duration
}

func NewAdapter(resolver IdentityResolver, cfg *config.Config) *Adapter {
	return &Adapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthCallbackURL,
			Scopes:       []string{"openid"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		identities:  resolver,
		provider:    "google",
		userInfoURL: cfg.OAuthUserInfoURL,
		timeout:     cfg.ProviderTimeout,
	}
}

// BeginLogin returns a fresh state nonce and the provider authorization URL
// carrying it. The caller is responsible for storing the state (cookie) and
// checking it on the callback.
func (a *Adapter) BeginLogin() (state, url string, err error) {
	state, err = shared.MakeRandHexString(16)
	if err != nil {
		return "", "", shared.ErrorInternal
	}
	return state, a.oauth.AuthCodeURL(state), nil
}

// CompleteLogin exchanges the callback code for a provider token, fetches
// the user profile, and resolves the provider user id to a local identity.
// Both provider round trips run under one bounded timeout and no identity
// store access happens until the full exchange has succeeded, so an
// abandoned or failed flow never creates a partial identity. Provider
// failures are reported as shared.ErrorProvider without retry; the caller
// may restart the flow from the beginning.
func (a *Adapter) CompleteLogin(ctx context.Context, code string) (*identities.Identity, error) {

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, shared.ErrorProvider
	}

	providerUserID, err := a.fetchProviderUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	return a.identities.FindOrCreateFederated(ctx, a.provider, providerUserID)
}

func (a *Adapter) fetchProviderUserID(ctx context.Context, token *oauth2.Token) (string, error) {

	client := a.oauth.Client(ctx, token)

	resp, err := client.Get(a.userInfoURL)
	if err != nil {
		return "", shared.ErrorProvider
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", shared.ErrorProvider
	}

	// "sub" is the OpenID Connect subject; older endpoints use "id"
	var profile struct {
		Sub string `json:"sub"`
		ID  string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", shared.ErrorProvider
	}

	subject := profile.Sub
	if subject == "" {
		subject = profile.ID
	}
	if subject == "" {
		return "", shared.ErrorProvider
	}

	return subject, nil
}
