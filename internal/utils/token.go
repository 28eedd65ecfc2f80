package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// SessionTokenBytes is the entropy of a session token: 512 bits, 128 hex chars.
const SessionTokenBytes = 64

// NewSessionToken returns an unguessable, hex-encoded session token.
func NewSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

// randomHex returns a hex string built from n bytes of crypto/rand output.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
