package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securemath/securemath-api/internal/models"
)

func mintToken(t *testing.T, secret string, method jwt.SigningMethod, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenHappyPath(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"})
	signed := mintToken(t, "test-secret", jwt.SigningMethodHS256, models.JWTClaims{
		UserID: "stu1",
		Role:   models.RoleStudent,
		Email:  "student@securemath.test",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "stu1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.True(t, claims.IsStudent())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"})
	signed := mintToken(t, "other-secret", jwt.SigningMethodHS256, models.JWTClaims{UserID: "stu1"})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"})
	signed := mintToken(t, "test-secret", jwt.SigningMethodHS256, models.JWTClaims{
		UserID: "stu1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"})
	signed := mintToken(t, "test-secret", jwt.SigningMethodHS256, models.JWTClaims{
		Role: models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"})

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
