package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	"github.com/tunnelmesh/go-tunnel-backend/idp"
	"github.com/tunnelmesh/go-tunnel-backend/internal/config"
	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/projects"
	"github.com/tunnelmesh/go-tunnel-backend/server"
	"github.com/tunnelmesh/go-tunnel-backend/session"
	"github.com/tunnelmesh/go-tunnel-backend/sharedports"
)

const (
	testSubject = "c2bacf97-7b4a-4f29-9a0e-2c1d6a60b9cf"
	testPointer = "P1"
)

// fakeIdP is a configurable identity-provider double.
type fakeIdP struct {
	exchangeTokens idp.Tokens
	exchangeErr    error
	refreshedToken string
	refreshErr     error
	refreshCalls   int
	profile        idp.Profile
	userInfoErr    error
	userInfoCalls  int
}

var _ idp.Client = (*fakeIdP)(nil)

func (f *fakeIdP) AuthCodeURL(state, nonce, codeVerifier string) string {
	return "https://idp.example/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeIdP) Exchange(_ context.Context, code, codeVerifier string) (idp.Tokens, error) {
	if f.exchangeErr != nil {
		return idp.Tokens{}, f.exchangeErr
	}
	return f.exchangeTokens, nil
}

func (f *fakeIdP) Refresh(_ context.Context, refreshToken string) (string, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshedToken, nil
}

func (f *fakeIdP) UserInfo(_ context.Context, accessToken string) (idp.Profile, error) {
	f.userInfoCalls++
	if f.userInfoErr != nil {
		return idp.Profile{}, f.userInfoErr
	}
	return f.profile, nil
}

// fakeVerifier validates tokens against a fixed token->subject map,
// standing in for the provider's JWKS check.
type fakeVerifier struct {
	subjects map[string]string
}

var _ server.TokenVerifier = (*fakeVerifier)(nil)

func (f *fakeVerifier) Verify(_ context.Context, rawToken string) (string, error) {
	if subject, ok := f.subjects[rawToken]; ok {
		return subject, nil
	}
	return "", interrors.ErrInvalidToken
}

func (f *fakeVerifier) allow(token, subject string) {
	f.subjects[token] = subject
}

// testFixture holds all test dependencies
type testFixture struct {
	server    *server.Server
	store     session.Store
	records   *session.Records
	minter    *session.Minter
	idp       *fakeIdP
	verifier  *fakeVerifier
	customers *customers.InMemoryRepo
	config    config.Config
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return setupTestFixtureWithStore(t, session.NewInMemoryStore())
}

func setupTestFixtureWithStore(t *testing.T, store session.Store) *testFixture {
	t.Helper()

	cfg := config.New()
	customerRepo := customers.NewInMemoryRepo()
	fake := &fakeIdP{}
	verifier := &fakeVerifier{subjects: make(map[string]string)}

	srv, err := server.New(cfg, server.Deps{
		Store:    store,
		IdP:      fake,
		Verifier: verifier,
		Repos: server.Repos{
			Customers:   customerRepo,
			Projects:    projects.NewInMemoryRepo(),
			SharedPorts: sharedports.NewInMemoryRepo(),
		},
		Publisher: notify.NewLogPublisher(zerolog.Nop()),
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	records, err := session.NewRecords(store)
	require.NoError(t, err)

	minter, err := session.NewMinter(cfg.GetPointerSigningKey())
	require.NoError(t, err)

	return &testFixture{
		server:    srv,
		store:     store,
		records:   records,
		minter:    minter,
		idp:       fake,
		verifier:  verifier,
		customers: customerRepo,
		config:    cfg,
	}
}

func (f *testFixture) do(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, req)
	return recorder
}

// mintPointer issues a live pointer token signed with the server's key.
func (f *testFixture) mintPointer(t *testing.T) string {
	t.Helper()

	pointer, err := f.minter.Mint(testSubject, "")
	require.NoError(t, err)
	return pointer
}

// seedSession writes a full session record and teaches the verifier about
// the access token, mirroring the state after a completed login.
func (f *testFixture) seedSession(t *testing.T, pointer, subject, accessToken, refreshToken string) {
	t.Helper()

	err := f.records.WriteLogin(context.Background(), pointer, subject, accessToken, "id-token", refreshToken)
	require.NoError(t, err)
	f.verifier.allow(accessToken, subject)
}

// upstreamToken builds a JWT shaped like an identity provider's access
// token; this service only reads its sub claim.
func upstreamToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte("upstream-provider-key"))
	require.NoError(t, err)
	return raw
}
