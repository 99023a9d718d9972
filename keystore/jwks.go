package keystore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
)

// ErrNoVerifyKey is returned by JWKS when the store holds no key
// capable of verifying signatures.
var ErrNoVerifyKey = errors.New("keystore: no verification key available")

// jwk is the published shape of a single RSA verification key.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// JWKS serializes the effective verify key as a JWK Set document so
// downstream services can verify tokens without sharing PEM files.
func (s *Store) JWKS() ([]byte, error) {
	key, ok := s.VerifyKey()
	if !ok {
		return nil, ErrNoVerifyKey
	}

	set := jwkSet{
		Keys: []jwk{{
			Kty: "RSA",
			Kid: VerificationKeyID,
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	return json.Marshal(set)
}
