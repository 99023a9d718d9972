package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/variamos/sessionauth/keystore"
)

// DefaultLifetime is the token lifetime used when none is configured.
const DefaultLifetime = 900 * time.Second

// Codec issues and verifies RS256-signed session tokens against an
// injected keystore.
type Codec struct {
	keys     *keystore.Store
	lifetime time.Duration
	now      func() time.Time
}

// NewCodec creates a codec over the given keystore. A non-positive
// lifetime falls back to DefaultLifetime.
func NewCodec(keys *keystore.Store, lifetime time.Duration) *Codec {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Codec{
		keys:     keys,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Lifetime returns the configured token lifetime.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue builds a Claims payload for the subject and signs it. The
// audience is optional. Expiration is issuance time plus the configured
// lifetime.
func (c *Codec) Issue(subject *Subject, audience string) (string, error) {
	signingKey, ok := c.keys.SigningKey()
	if !ok {
		return "", ErrNoSigningKey
	}
	if subject == nil || subject.ID == "" {
		return "", ErrNoSubject
	}

	now := c.now()
	claims := Claims{
		Name:        subject.Name,
		UserName:    subject.UserName,
		Email:       subject.Email,
		Roles:       subject.Roles,
		Permissions: subject.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
			ID:        uuid.NewString(),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and decodes its payload. It does
// not validate expiration; see the session validator for that rule.
// Every signature or parse failure is normalized to ErrInvalidToken.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	verifyKey, ok := c.keys.VerifyKey()
	if !ok {
		return nil, ErrNoVerifyKey
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{},
		func(*jwt.Token) (any, error) { return verifyKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
