package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/confideapp/confide/internal/logging"
	"github.com/confideapp/confide/internal/server/authz"
	"github.com/confideapp/confide/internal/server/config"
	"github.com/confideapp/confide/internal/server/federation"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/password"
	"github.com/confideapp/confide/internal/server/sessions"
	"github.com/confideapp/confide/internal/shared"
)

// --- fakes ---

type memIdentityRepo struct {
	mu   sync.Mutex
	rows map[string]*identities.Identity
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{rows: make(map[string]*identities.Identity)}
}

func (r *memIdentityRepo) CreateLocal(ctx context.Context, identity *identities.Identity) (*identities.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Username == identity.Username {
			return nil, shared.ErrorDuplicateUsername
		}
	}
	created := *identity
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	r.rows[created.ID] = &created
	return &created, nil
}

func (r *memIdentityRepo) GetByUsername(ctx context.Context, username string) (*identities.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Username == username {
			return row, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (r *memIdentityRepo) GetByID(ctx context.Context, id string) (*identities.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	return row, nil
}

func (r *memIdentityRepo) GetOrCreateFederated(ctx context.Context, fid identities.FederatedID) (*identities.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Federated != nil && *row.Federated == fid {
			return row, nil
		}
	}
	created := &identities.Identity{
		ID:        uuid.NewString(),
		Federated: &fid,
		CreatedAt: time.Now(),
	}
	r.rows[created.ID] = created
	return created, nil
}

func (r *memIdentityRepo) UpdateSecret(ctx context.Context, id string, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return shared.ErrorNotFound
	}
	row.Secret = secret
	return nil
}

func (r *memIdentityRepo) ListWithSecret(ctx context.Context) ([]*identities.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*identities.Identity
	for _, row := range r.rows {
		if row.Secret != "" {
			list = append(list, row)
		}
	}
	return list, nil
}

// --- harness ---

func newTestServer(t *testing.T, cfg *config.Config) *HTTPServer {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	identityService := identities.NewService(newMemIdentityRepo(), password.NewHasher())
	sessionService := sessions.NewService(newMemSessionRepo(), identityService, cfg)
	adapter := federation.NewAdapter(identityService, cfg)
	gate := authz.NewGate(sessionService)

	s, err := NewHTTPServer(cfg.EndpointAddrHTTP, logger, identityService, sessionService, adapter, gate)
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}
	return s
}

func newMemSessionRepo() sessions.Repository {
	return &memSessionRepo{rows: make(map[string]*sessions.Session)}
}

type memSessionRepo struct {
	mu   sync.Mutex
	rows map[string]*sessions.Session
}

func (r *memSessionRepo) Create(ctx context.Context, session *sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[session.ID] = session
	return nil
}

func (r *memSessionRepo) Get(ctx context.Context, id string) (*sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	return session, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

func doJSON(s *HTTPServer, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestRegisterLoginSubmitList(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodPost, "/api/register", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var registered map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("register response decode error: %v", err)
	}
	if registered["id"] == "" {
		t.Fatalf("register response missing id")
	}

	rec = doJSON(s, http.MethodPost, "/api/login", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login response decode error: %v", err)
	}
	auth := map[string]string{"Authorization": "Bearer " + login["token"]}

	rec = doJSON(s, http.MethodPost, "/api/secrets", `{"secret":"mysecret"}`, auth)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("submit: want 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, http.MethodGet, "/api/secrets", "", auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list []secretResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("list decode error: %v", err)
	}
	if len(list) != 1 || list[0].IdentityID != registered["id"] || list[0].Secret != "mysecret" {
		t.Fatalf("unexpected secrets listing: %+v", list)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodPost, "/api/register", `{"username":"","password":""}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for empty credentials, got %d", rec.Code)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodPost, "/api/register", `{"username":"bob","password":"pw"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: want 201, got %d", rec.Code)
	}

	rec = doJSON(s, http.MethodPost, "/api/register", `{"username":"bob","password":"other"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register: want 409, got %d", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	doJSON(s, http.MethodPost, "/api/register", `{"username":"carol","password":"right"}`, nil)

	rec := doJSON(s, http.MethodPost, "/api/login", `{"username":"carol","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: want 401, got %d", rec.Code)
	}

	rec = doJSON(s, http.MethodPost, "/api/login", `{"username":"nobody","password":"whatever"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown username: want 401, got %d", rec.Code)
	}
}

func TestSecrets_RequireSession(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodGet, "/api/secrets", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", rec.Code)
	}

	rec = doJSON(s, http.MethodPost, "/api/secrets", `{"secret":"x"}`, map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: want 401, got %d", rec.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	doJSON(s, http.MethodPost, "/api/register", `{"username":"dave","password":"pw"}`, nil)
	rec := doJSON(s, http.MethodPost, "/api/login", `{"username":"dave","password":"pw"}`, nil)
	var login map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login decode error: %v", err)
	}
	auth := map[string]string{"Authorization": "Bearer " + login["token"]}

	rec = doJSON(s, http.MethodPost, "/api/logout", "", auth)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: want 204, got %d", rec.Code)
	}

	rec = doJSON(s, http.MethodGet, "/api/secrets", "", auth)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: want 401, got %d", rec.Code)
	}
}

func TestSubmitSecret_Empty(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	doJSON(s, http.MethodPost, "/api/register", `{"username":"erin","password":"pw"}`, nil)
	rec := doJSON(s, http.MethodPost, "/api/login", `{"username":"erin","password":"pw"}`, nil)
	var login map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login decode error: %v", err)
	}

	rec = doJSON(s, http.MethodPost, "/api/secrets", `{"secret":""}`,
		map[string]string{"Authorization": "Bearer " + login["token"]})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty secret: want 400, got %d", rec.Code)
	}
}

func TestBeginFederatedLogin_RedirectsWithState(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodGet, "/auth/google", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("want 302, got %d", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("redirect location parse error: %v", err)
	}
	state := location.Query().Get("state")
	if state == "" {
		t.Fatalf("authorization URL missing state: %s", location)
	}

	var found bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == stateCookieName && cookie.Value == state {
			found = true
		}
	}
	if !found {
		t.Fatalf("state cookie not set or does not match redirect state")
	}
}

func TestFederatedCallback_StateMismatch(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "expected"})
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("state mismatch: want 401, got %d", rec.Code)
	}
}

func TestFederatedCallback_MissingCode(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&error=access_denied", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("denied callback: want 401, got %d", rec.Code)
	}
}

func TestFederatedCallback_Success(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer"}`)
		case "/userinfo":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"sub":"google-user-7"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer provider.Close()

	cfg := testConfig()
	cfg.OAuthTokenURL = provider.URL + "/token"
	cfg.OAuthUserInfoURL = provider.URL + "/userinfo"

	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=good&state=abc", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("callback: want 302, got %d: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatalf("callback did not set a session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/secrets", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("session cookie from callback rejected: %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig())

	rec := doJSON(s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: want 200, got %d", rec.Code)
	}
}
