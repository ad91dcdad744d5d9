package session

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	interrors "github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

// PointerValidity is the fixed lifetime of a pointer token. The store-backed
// session entries share the same window, so no entry outlives its pointer.
const PointerValidity = 24 * time.Hour

// Minter issues pointer tokens: opaque, self-contained HS256 credentials a
// client holds instead of the real upstream tokens. Validity is structural
// (signature plus expiry), not store-backed.
type Minter struct {
	signingKey []byte
	nowTime    func() time.Time
}

// PointerClaims are the claims carried by a minted pointer token.
type PointerClaims struct {
	Subject    string
	GivenName  string
	FamilyName string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type MinterOption func(*Minter)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MinterOption {
	return func(m *Minter) {
		m.nowTime = nowFunc
	}
}

func NewMinter(signingKey []byte, options ...MinterOption) (*Minter, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("[NewMinter] signing key is required")
	}

	m := &Minter{
		signingKey: signingKey,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Mint creates a pointer token for the subject. The display name is split on
// the first space into given/family name claims; both may be empty.
func (m *Minter) Mint(subject, displayName string) (string, error) {
	given, family := splitDisplayName(displayName)
	now := m.nowTime()

	claims := jwtlib.MapClaims{
		"sub":         subject,
		"given_name":  given,
		"family_name": family,
		"iat":         now.Unix(),
		"exp":         now.Add(PointerValidity).Unix(),
		"jti":         uuid.New().String(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "[Minter.Mint] failed to sign pointer token")
	}
	return signed, nil
}

// Verify checks the pointer token's signature and expiry and returns its
// claims. It never consults the store.
func (m *Minter) Verify(raw string) (*PointerClaims, error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwtlib.WithTimeFunc(m.nowTime))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, interrors.ErrPointerExpired
		}
		return nil, interrors.ErrInvalidPointer
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return nil, interrors.ErrInvalidPointer
	}

	pc := &PointerClaims{
		Subject:    stringClaim(claims, "sub"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		pc.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		pc.ExpiresAt = exp.Time
	}
	return pc, nil
}

// ParseSubject extracts the sub claim without verifying the signature. Used
// on tokens a trusted layer has already validated (the upstream access token
// handed over at login completion).
func ParseSubject(raw string) (string, error) {
	parser := jwtlib.NewParser()
	parsed, _, err := parser.ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return "", errors.Wrap(err, "[ParseSubject] malformed token")
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", errors.New("[ParseSubject] unexpected claims type")
	}

	subject := stringClaim(claims, "sub")
	if subject == "" {
		return "", errors.New("[ParseSubject] token has no sub claim")
	}
	return subject, nil
}

func splitDisplayName(displayName string) (given, family string) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "", ""
	}
	parts := strings.SplitN(displayName, " ", 2)
	given = parts[0]
	if len(parts) > 1 {
		family = parts[1]
	}
	return given, family
}

func stringClaim(claims jwtlib.MapClaims, name string) string {
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}
