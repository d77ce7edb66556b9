package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filelinkbot/utils"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := utils.HashPassword("pw")
	require.NoError(t, err)
	return NewAuthService("admin", hash, "secret")
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	s := newAuth(t)

	token, err := s.Login("admin", "pw")
	require.NoError(t, err)

	sub, err := s.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestAuthService_BadCredentials(t *testing.T) {
	s := newAuth(t)

	_, err := s.Login("admin", "nope")
	require.ErrorIs(t, err, ErrBadCredentials)
	_, err = s.Login("root", "pw")
	require.ErrorIs(t, err, ErrBadCredentials)

	noPassword := NewAuthService("admin", "", "secret")
	_, err = noPassword.Login("admin", "")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthService_RejectsForeignAndExpiredTokens(t *testing.T) {
	s := newAuth(t)

	other := NewAuthService("admin", "", "other-secret")
	foreign, err := other.GenerateJWT("admin")
	require.NoError(t, err)
	_, err = s.VerifyJWT(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := s.GenerateJWT("admin")
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.VerifyJWT(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifyJWT("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RejectsNonAdminRole(t *testing.T) {
	s := newAuth(t)

	claims := jwt.MapClaims{"sub": "admin", "role": "user", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.VerifyJWT(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
