package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	"github.com/tunnelmesh/go-tunnel-backend/session"
)

func postRefresh(f *testFixture, credential string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/RefreshToken", nil)
	req.Header.Set("Authorization", "Bearer "+credential)
	return f.do(req)
}

func decodeResult(t *testing.T, response *httptest.ResponseRecorder) (success bool, errMsg string) {
	t.Helper()

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	return body.Success, body.Error
}

func TestRefreshRotatesAccessTokenInPlace(t *testing.T) {
	f := setupTestFixture(t)
	pointer := f.mintPointer(t)
	f.seedSession(t, pointer, testSubject, "upstream-access-1", "refresh-1")
	f.idp.refreshedToken = "upstream-access-2"
	f.verifier.allow("upstream-access-2", testSubject)

	response := postRefresh(f, pointer)

	require.Equal(t, http.StatusOK, response.Code)
	success, _ := decodeResult(t, response)
	require.True(t, success)

	// Both access-token entries now hold the new token; the refresh token
	// and the pointer itself are unchanged.
	ctx := context.Background()
	pointerAccess, err := f.records.GetPointerAccessToken(ctx, pointer)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-2", pointerAccess)

	subjectAccess, err := f.records.GetSubjectAccessToken(ctx, testSubject)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-2", subjectAccess)

	refreshToken, err := f.records.GetPointerRefreshToken(ctx, pointer)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", refreshToken)
}

func TestRefreshedTokenServesNextRequest(t *testing.T) {
	f := setupTestFixture(t)
	pointer := f.mintPointer(t)
	f.seedSession(t, pointer, testSubject, "upstream-access-1", "refresh-1")
	f.idp.refreshedToken = "upstream-access-2"
	f.verifier.allow("upstream-access-2", testSubject)
	_, err := f.customers.CreateIfAbsent(context.Background(), &customers.Customer{Subject: testSubject})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, postRefresh(f, pointer).Code)

	// Same pointer, next request: resolution now yields the rotated token
	// even after the provider revokes the old one.
	delete(f.verifier.subjects, "upstream-access-1")

	req := httptest.NewRequest(http.MethodGet, "/Session", nil)
	req.Header.Set("Authorization", "Bearer "+pointer)
	require.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestRefreshWithoutStoredRefreshToken(t *testing.T) {
	f := setupTestFixture(t)

	// Session with access token but no refresh token (e.g. minted from a
	// bare access_token handoff at login).
	ctx := context.Background()
	require.NoError(t, f.records.SetPointerSubject(ctx, testPointer, testSubject))
	require.NoError(t, f.records.SetPointerAccessToken(ctx, testPointer, "upstream-access-1"))
	f.verifier.allow("upstream-access-1", testSubject)

	response := postRefresh(f, testPointer)

	require.Equal(t, http.StatusOK, response.Code)
	success, errMsg := decodeResult(t, response)
	require.False(t, success)
	require.Equal(t, "no refresh token for session", errMsg)
	require.Zero(t, f.idp.refreshCalls)

	// Nothing was mutated
	access, err := f.records.GetPointerAccessToken(ctx, testPointer)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-1", access)
}

func TestRefreshUpstreamRejectionIsTypedFailure(t *testing.T) {
	f := setupTestFixture(t)
	pointer := f.mintPointer(t)
	f.seedSession(t, pointer, testSubject, "upstream-access-1", "refresh-1")
	f.idp.refreshErr = context.DeadlineExceeded

	response := postRefresh(f, pointer)

	require.Equal(t, http.StatusOK, response.Code)
	success, errMsg := decodeResult(t, response)
	require.False(t, success)
	require.Equal(t, "token refresh failed", errMsg)

	// A rejected refresh leaves the stored tokens alone
	ctx := context.Background()
	access, err := f.records.GetPointerAccessToken(ctx, pointer)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-1", access)

	subjectAccess, err := f.records.GetSubjectAccessToken(ctx, testSubject)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-1", subjectAccess)
}

func TestRefreshDoesNotExtendSessionBeyondPointerExpiry(t *testing.T) {
	now := time.Now()
	clock := now
	store := session.NewInMemoryStore(session.WithStoreNowTime(func() time.Time { return clock }))
	f := setupTestFixtureWithStore(t, store)

	// Pointer issued 23 hours ago: one hour of validity left.
	agedMinter, err := session.NewMinter(f.config.GetPointerSigningKey(),
		session.WithNowTime(func() time.Time { return now.Add(-23 * time.Hour) }))
	require.NoError(t, err)
	pointer, err := agedMinter.Mint(testSubject, "")
	require.NoError(t, err)

	f.seedSession(t, pointer, testSubject, "upstream-access-1", "refresh-1")
	f.idp.refreshedToken = "upstream-access-2"

	response := postRefresh(f, pointer)
	require.Equal(t, http.StatusOK, response.Code)
	success, _ := decodeResult(t, response)
	require.True(t, success)

	// Two hours later the pointer is past its window; the refreshed entries
	// must be gone with it.
	clock = now.Add(2 * time.Hour)

	ctx := context.Background()
	access, err := f.records.GetPointerAccessToken(ctx, pointer)
	require.NoError(t, err)
	require.Empty(t, access)

	subjectAccess, err := f.records.GetSubjectAccessToken(ctx, testSubject)
	require.NoError(t, err)
	require.Empty(t, subjectAccess)
}

func TestRefreshRejectsExpiredPointer(t *testing.T) {
	f := setupTestFixture(t)

	// Structurally expired pointer whose store entries are still live.
	expiredMinter, err := session.NewMinter(f.config.GetPointerSigningKey(),
		session.WithNowTime(func() time.Time { return time.Now().Add(-25 * time.Hour) }))
	require.NoError(t, err)
	pointer, err := expiredMinter.Mint(testSubject, "")
	require.NoError(t, err)

	f.seedSession(t, pointer, testSubject, "upstream-access-1", "refresh-1")
	f.idp.refreshedToken = "upstream-access-2"

	response := postRefresh(f, pointer)

	require.Equal(t, http.StatusOK, response.Code)
	success, errMsg := decodeResult(t, response)
	require.False(t, success)
	require.Equal(t, "session expired", errMsg)
	require.Zero(t, f.idp.refreshCalls)

	access, err := f.records.GetPointerAccessToken(context.Background(), pointer)
	require.NoError(t, err)
	require.Equal(t, "upstream-access-1", access)
}

func TestRefreshRequiresAuthentication(t *testing.T) {
	f := setupTestFixture(t)

	response := f.do(httptest.NewRequest(http.MethodPost, "/RefreshToken", nil))

	require.Equal(t, http.StatusUnauthorized, response.Code)
}
