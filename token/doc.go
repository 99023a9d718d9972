// Package token creates and verifies RS256-signed session tokens.
//
// The Codec signs a Claims payload with the keystore's private key and
// verifies signatures with the public verification key, falling back to
// the signing key's public half when no explicit verification key is
// configured. Verify checks the signature only; expiration is enforced
// one layer up by the session validator so that the expired-session
// failure stays distinct from a verification failure.
package token
