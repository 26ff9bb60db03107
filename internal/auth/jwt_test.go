package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey:           []byte("test-secret"),
		AccessTokenDuration: 30 * time.Minute,
		Issuer:              "shortlink",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	s := newTestJWT()

	token, err := s.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "shortlink", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestJWT_UniqueIDs(t *testing.T) {
	s := newTestJWT()
	a, err := s.GenerateAccessToken(1, "alice")
	require.NoError(t, err)
	b, err := s.GenerateAccessToken(1, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWT_Rejects(t *testing.T) {
	s := newTestJWT()
	valid, err := s.GenerateAccessToken(1, "alice")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		old := newTestJWT()
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.GenerateAccessToken(1, "alice")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(&JWTConfig{SecretKey: []byte("other"), AccessTokenDuration: time.Minute, Issuer: "shortlink"})
		token, err := other.GenerateAccessToken(1, "alice")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(&JWTConfig{SecretKey: []byte("test-secret"), AccessTokenDuration: time.Minute, Issuer: "someone-else"})
		token, err := other.GenerateAccessToken(1, "alice")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := s.ValidateToken(valid + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice",
				Issuer:    "shortlink",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractTokenFromBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc.def", "abc.def"},
		{"  Bearer   abc.def  ", "abc.def"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
		{"abc.def", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenFromBearer(tt.header))
		})
	}
}
