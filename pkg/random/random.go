package random

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var ErrInvalidLength = errors.New("length must be positive")

// NewRandomString returns a string of n characters drawn uniformly from
// ASCII letters and digits using a cryptographic source.
func NewRandomString(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidLength
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}

	return string(buf), nil
}

// IsValid reports whether s has length n and only contains characters from
// the generator alphabet.
func IsValid(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
