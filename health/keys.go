package health

import (
	"context"
	"crypto/rsa"
)

// KeySource is the keystore surface the key-material checker needs.
type KeySource interface {
	SigningKey() (*rsa.PrivateKey, bool)
	VerifyKey() (*rsa.PublicKey, bool)
}

// keyMaterialChecker reports on the presence of signing and
// verification key material.
type keyMaterialChecker struct {
	keys KeySource
}

// NewKeyMaterialChecker creates a checker over the given key source.
// It reports healthy when both signing and verification are possible,
// degraded when only verification is (signing disabled), and unhealthy
// when no usable key exists at all.
func NewKeyMaterialChecker(keys KeySource) Checker {
	return &keyMaterialChecker{keys: keys}
}

// Name returns "key_material".
func (c *keyMaterialChecker) Name() string { return "key_material" }

// Check inspects the key source.
func (c *keyMaterialChecker) Check(_ context.Context) Result {
	_, canSign := c.keys.SigningKey()
	_, canVerify := c.keys.VerifyKey()

	details := map[string]any{
		"signing": canSign,
		"verify":  canVerify,
	}

	switch {
	case canSign && canVerify:
		return Healthy("signing and verification keys present").WithDetails(details)
	case canVerify:
		return Degraded("verification only, signing disabled").WithDetails(details)
	default:
		return Unhealthy("no usable key material").WithDetails(details)
	}
}
