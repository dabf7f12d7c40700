package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestGenerateAndValidate(t *testing.T) {
	operatorID := uuid.New()

	tokenString, err := GenerateToken(testSecret, "test-issuer", operatorID, RoleOperator, 24)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := ValidateToken(tokenString, testSecret)
	require.NoError(t, err)

	assert.Equal(t, operatorID, claims.OperatorID)
	assert.Equal(t, RoleOperator, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, operatorID.String(), claims.Subject, "Subject should be operator ID")
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.NotBefore)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, claims.IssuedAt.Time, claims.NotBefore.Time)
}

func TestGenerateToken_MultipleCallsCreateDifferentIDs(t *testing.T) {
	operatorID := uuid.New()

	token1, err := GenerateToken(testSecret, "test-issuer", operatorID, RoleViewer, 24)
	require.NoError(t, err)
	token2, err := GenerateToken(testSecret, "test-issuer", operatorID, RoleViewer, 24)
	require.NoError(t, err)

	claims1, err := ValidateToken(token1, testSecret)
	require.NoError(t, err)
	claims2, err := ValidateToken(token2, testSecret)
	require.NoError(t, err)

	assert.NotEqual(t, claims1.ID, claims2.ID, "Each token should have a unique ID")
}

func TestGenerateToken_DifferentExpiries(t *testing.T) {
	testCases := []struct {
		expiryHours int
		name        string
	}{
		{1, "short-lived token"},
		{24, "one day token"},
		{168, "one week token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokenString, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleAdmin, tc.expiryHours)
			require.NoError(t, err)

			claims, err := ValidateToken(tokenString, testSecret)
			require.NoError(t, err)

			expected := time.Now().Add(time.Duration(tc.expiryHours) * time.Hour)
			assert.WithinDuration(t, expected, claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	tokenString, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleOperator, -1)
	require.NoError(t, err, "Should generate token even with past expiry")

	claims, err := ValidateToken(tokenString, testSecret)

	require.Error(t, err)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(testSecret, "test-issuer", uuid.New(), RoleOperator, 24)
	require.NoError(t, err)

	for _, secret := range []string{"another-secret", ""} {
		claims, err := ValidateToken(tokenString, secret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	}
}

func TestValidateToken_Malformed(t *testing.T) {
	claims, err := ValidateToken("not.a.jwt", testSecret)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "parse token")
}

func TestValidateToken_MissingOperator(t *testing.T) {
	standardClaims := jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		Subject:   "test-subject",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, standardClaims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := ValidateToken(tokenString, testSecret)

	assert.ErrorIs(t, err, ErrMissingOperator)
	assert.Nil(t, claims)
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	claims := Claims{
		OperatorID: uuid.New(),
		Role:       RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	validated, err := ValidateToken(tokenString, testSecret)

	assert.Error(t, err)
	assert.Nil(t, validated)
}
