package common

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes is the entropy of an opaque token; 24 bytes encode to a
// 32-character base64url string.
const tokenBytes = 24

// MakeOpaqueToken generates a secure random string suitable for renewal
// tokens and generated client secrets. The value is base64url-encoded
// without padding.
func MakeOpaqueToken() string {
	return base64.RawURLEncoding.EncodeToString(GenerateRandByteArray(tokenBytes))
}

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system random source fails, which is not recoverable.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing secrets from memory after use.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
