package token

import "errors"

// Sentinel errors returned by the codec.
var (
	// ErrNoSigningKey means the keystore holds no private key to sign
	// with.
	ErrNoSigningKey = errors.New("token: no signing key configured")

	// ErrNoVerifyKey means the keystore holds neither a verification
	// key nor a signing key to fall back to.
	ErrNoVerifyKey = errors.New("token: no verification key configured")

	// ErrNoSubject means Issue was called without a subject entity.
	ErrNoSubject = errors.New("token: missing subject")

	// ErrMissingToken means no token was supplied.
	ErrMissingToken = errors.New("token: missing token")

	// ErrInvalidToken covers every signature or payload failure:
	// tampered, malformed, or signed with the wrong algorithm or key.
	// No finer distinction is surfaced to callers.
	ErrInvalidToken = errors.New("token: invalid token")
)
