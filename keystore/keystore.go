package keystore

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Logical identifiers for the two keys held by a Store.
const (
	SigningKeyID      = "signing-key"
	VerificationKeyID = "verification-key"
)

// Store holds at most one signing key and one verification key.
// Read-only after construction.
type Store struct {
	signing      *rsa.PrivateKey
	verification *rsa.PublicKey
}

// LoadReport describes the outcome of a best-effort Load.
type LoadReport struct {
	// SigningLoaded is true if the private signing key was registered.
	SigningLoaded bool

	// VerificationLoaded is true if the public verification key was
	// registered.
	VerificationLoaded bool

	// Errors collects per-key load failures. A missing (empty) path is
	// a skip, not an error.
	Errors []error
}

// New creates a Store from already-parsed key material. Either key may
// be nil. Intended for wiring and tests with fixture keys.
func New(signing *rsa.PrivateKey, verification *rsa.PublicKey) *Store {
	return &Store{signing: signing, verification: verification}
}

// Load reads the signing and verification keys from the given PEM file
// paths. Either path may be empty, in which case that key is skipped.
// A read or parse failure for one key is recorded in the report and
// does not abort the other key's load.
func Load(privateKeyPath, publicKeyPath string) (*Store, LoadReport) {
	s := &Store{}
	report := LoadReport{}

	if privateKeyPath != "" {
		key, err := loadPrivateKey(privateKeyPath)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("load %s: %w", SigningKeyID, err))
		} else {
			s.signing = key
			report.SigningLoaded = true
		}
	}

	if publicKeyPath != "" {
		key, err := loadPublicKey(publicKeyPath)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("load %s: %w", VerificationKeyID, err))
		} else {
			s.verification = key
			report.VerificationLoaded = true
		}
	}

	return s, report
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
}

// SigningKey returns the private signing key, if loaded.
func (s *Store) SigningKey() (*rsa.PrivateKey, bool) {
	if s.signing == nil {
		return nil, false
	}
	return s.signing, true
}

// VerificationKey returns the explicitly loaded public verification
// key, if any. It does not fall back to the signing key.
func (s *Store) VerificationKey() (*rsa.PublicKey, bool) {
	if s.verification == nil {
		return nil, false
	}
	return s.verification, true
}

// VerifyKey returns the key to verify token signatures with: the
// explicit verification key when present, otherwise the signing key's
// public half.
func (s *Store) VerifyKey() (*rsa.PublicKey, bool) {
	if s.verification != nil {
		return s.verification, true
	}
	if s.signing != nil {
		return &s.signing.PublicKey, true
	}
	return nil, false
}
