package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService(t *testing.T) {
	s := NewPasswordService(bcrypt.MinCost)

	hash, err := s.HashPassword("Secret1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hash)

	assert.NoError(t, s.VerifyPassword(hash, "Secret1!"))
	assert.Error(t, s.VerifyPassword(hash, "secret1!"))

	other, err := s.HashPassword("Secret1!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted hashes differ")
}

func TestPasswordService_InvalidInput(t *testing.T) {
	s := NewPasswordService(bcrypt.MinCost)

	_, err := s.HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = s.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestPasswordService_CostFallback(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordService(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordService(99).cost)
	assert.Equal(t, 10, NewPasswordService(10).cost)
}

func TestPasswordService_SimulateVerify(t *testing.T) {
	s := NewPasswordService(bcrypt.MinCost)
	assert.NotPanics(t, func() {
		s.SimulateVerify("anything")
		s.SimulateVerify("")
	})
	assert.NotEmpty(t, s.dummyHash)
}
