package seed

import (
	"crypto/rand"
	"fmt"
)

const generatedPasswordLength = 24

// The 64-entry alphabet keeps the byte-to-rune mapping uniform.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// GeneratePassword returns a random credential for a first-run administrator.
func GeneratePassword() (string, error) {
	raw := make([]byte, generatedPasswordLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	out := make([]byte, generatedPasswordLength)
	for i, b := range raw {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}
