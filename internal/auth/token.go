package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is the single error returned for every token verification
// failure. Signature mismatch, malformed structure and expiry are deliberately
// not distinguished to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the session token payload: the admin identity and its
// organization, plus the registered expiry.
type Claims struct {
	AdminID        string `json:"admin_id"`
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies signed session tokens. It is the sole
// authority for both operations; tokens are never persisted.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates an issuer with the given HMAC signing key and token
// lifetime.
func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
}

// WithClock overrides the issuer's clock. Used by tests to mint tokens in the
// past.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue signs a session token for the given admin identity, embedding the
// configured expiry.
func (t *TokenIssuer) Issue(adminID, email, organizationID string) (string, error) {
	issued := t.now().UTC()
	claims := Claims{
		AdminID:        adminID,
		Email:          email,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Verify checks the signature and expiry of a token and returns its claims.
// Any failure is reported as ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.signingKey, nil
		},
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
