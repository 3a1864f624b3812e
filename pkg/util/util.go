package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomString returns n lowercase hex characters.
func RandomString(n int) string {
	bytes := make([]byte, (n+1)/2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:n]
}

// ExportKey names an exported artifact for a session, e.g. "3f2a...-9c1d0e".
func ExportKey(sessionID string) string {
	return sessionID + "-" + RandomString(6)
}
