package utils

import (
	"math/rand"
	"time"
)

const tempPasswordLength = 12
const passwordBytes = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// GenerateTempPassword produces a one-time password for invited accounts.
// The ambiguous characters (0/O, 1/l/I) are left out of the charset.
func GenerateTempPassword() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	b := make([]byte, tempPasswordLength)
	for i := range b {
		b[i] = passwordBytes[seededRand.Intn(len(passwordBytes))]
	}
	return string(b)
}
