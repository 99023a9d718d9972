package session

import (
	"errors"
	"time"

	"github.com/variamos/sessionauth/token"
)

// ErrExpired means the token verified but its session is over: the
// expiration claim is absent or not in the future.
var ErrExpired = errors.New("session: expired")

// Validator applies session rules on top of token verification.
type Validator struct {
	codec *token.Codec
	now   func() time.Time
}

// NewValidator creates a validator over the given codec.
func NewValidator(codec *token.Codec) *Validator {
	return &Validator{
		codec: codec,
		now:   time.Now,
	}
}

// Validate verifies the token and enforces expiration. Verification
// failures propagate unchanged; an unexpired, verified token yields its
// claims.
func (v *Validator) Validate(raw string) (*token.Claims, error) {
	claims, err := v.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	// A token without a creatable expiration is treated as already
	// expired.
	if claims.ExpiresAt == nil || !v.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	return claims, nil
}
