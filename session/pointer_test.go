package session_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
	"github.com/tunnelmesh/go-tunnel-backend/session"
)

const (
	testSigningKey = "unit-test-signing-key"
	testSubject    = "c2bacf97-7b4a-4f29-9a0e-2c1d6a60b9cf"
)

func newTestMinter(t *testing.T, now time.Time) *session.Minter {
	t.Helper()

	minter, err := session.NewMinter([]byte(testSigningKey), session.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	return minter
}

func TestMintAndVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	minter := newTestMinter(t, now)

	pointer, err := minter.Mint(testSubject, "Ada Lovelace")
	require.NoError(t, err)
	require.NotEmpty(t, pointer)

	claims, err := minter.Verify(pointer)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, "Ada", claims.GivenName)
	require.Equal(t, "Lovelace", claims.FamilyName)
	require.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestMintEmptyDisplayName(t *testing.T) {
	minter := newTestMinter(t, time.Now())

	pointer, err := minter.Mint(testSubject, "")
	require.NoError(t, err)

	claims, err := minter.Verify(pointer)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Empty(t, claims.GivenName)
	require.Empty(t, claims.FamilyName)
}

func TestVerifyExpiredPointer(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	minter := newTestMinter(t, issued)

	pointer, err := minter.Mint(testSubject, "")
	require.NoError(t, err)

	// A second minter whose clock sits past the 24h window
	late, err := session.NewMinter([]byte(testSigningKey), session.WithNowTime(func() time.Time {
		return issued.Add(25 * time.Hour)
	}))
	require.NoError(t, err)

	_, err = late.Verify(pointer)
	require.ErrorIs(t, err, interrors.ErrPointerExpired)
}

func TestVerifyWrongKey(t *testing.T) {
	minter := newTestMinter(t, time.Now())

	pointer, err := minter.Mint(testSubject, "")
	require.NoError(t, err)

	other, err := session.NewMinter([]byte("a-different-key"))
	require.NoError(t, err)

	_, err = other.Verify(pointer)
	require.ErrorIs(t, err, interrors.ErrInvalidPointer)
}

func TestVerifyGarbage(t *testing.T) {
	minter := newTestMinter(t, time.Now())

	_, err := minter.Verify("unknown-token")
	require.ErrorIs(t, err, interrors.ErrInvalidPointer)
}

func TestParseSubject(t *testing.T) {
	// Token signed with a key this service never sees; ParseSubject must
	// still read the sub claim.
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": testSubject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte("upstream-provider-key"))
	require.NoError(t, err)

	subject, err := session.ParseSubject(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, subject)
}

func TestParseSubjectMalformed(t *testing.T) {
	_, err := session.ParseSubject("not-a-jwt")
	require.Error(t, err)
}

func TestNewMinterRequiresKey(t *testing.T) {
	_, err := session.NewMinter(nil)
	require.Error(t, err)
}
