package utils

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("k", 64)

func TestMain(m *testing.M) {
	PBKDF2Iterations = 1000
	os.Exit(m.Run())
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("Pa$$w0rd")
	require.NoError(t, err)
	assert.Len(t, hash, keySize)
	assert.Len(t, salt, saltSize)

	assert.True(t, VerifyPassword("Pa$$w0rd", hash, salt))
	assert.False(t, VerifyPassword("pa$$w0rd", hash, salt))
	assert.False(t, VerifyPassword("", hash, salt))
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := HashPassword("secret")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, _, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Empty(t, claims.Issuer)
	assert.Empty(t, claims.Audience)
}

func TestGenerateTokenRejectsWeakSecret(t *testing.T) {
	_, err := GenerateToken("user-1", "a@example.com", "short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestValidateTokenFailures(t *testing.T) {
	expired, err := GenerateToken("user-1", "a@example.com", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid, err := GenerateToken("user-1", "a@example.com", secret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(valid, strings.Repeat("x", 64))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken("not-a-token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRequiresSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
