package auth

import "crypto/subtle"

// SecretValidator compares a caller-supplied shared secret against the
// configured one without leaking content-dependent timing.
type SecretValidator struct {
	secret []byte
}

// NewSecretValidator creates a validator for the given secret. An empty
// secret means the backend channel is disabled; Matches always fails and
// Configured reports false.
func NewSecretValidator(secret string) *SecretValidator {
	return &SecretValidator{secret: []byte(secret)}
}

// Configured reports whether a shared secret is set at all.
func (v *SecretValidator) Configured() bool {
	return len(v.secret) > 0
}

// Matches compares candidate against the configured secret. Byte lengths
// are compared first; the constant-time primitive only runs on equal
// lengths, so a mismatch leaks gross length and nothing else. Comparing
// bytes rather than characters keeps multi-byte input safe.
func (v *SecretValidator) Matches(candidate string) bool {
	if !v.Configured() {
		return false
	}
	c := []byte(candidate)
	if len(c) != len(v.secret) {
		return false
	}
	return subtle.ConstantTimeCompare(c, v.secret) == 1
}
