package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/config"
	"github.com/kwame/agrimarket/internal/types"
)

func testJWTService(t *testing.T) *JWTService {
	t.Helper()
	return NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-unit-tests",
		ExpirationHours: 24,
	})
}

func testAccount(role types.Role) *types.Account {
	profileID := uuid.New()
	return &types.Account{
		ID:        uuid.New(),
		Email:     "someone@example.com",
		Role:      role,
		ProfileID: &profileID,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	service := testJWTService(t)
	account := testAccount(types.RoleFarmer)

	token, err := service.GenerateToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, types.RoleFarmer, claims.Role)
	require.NotNil(t, claims.ProfileID)
	assert.Equal(t, *account.ProfileID, *claims.ProfileID)
}

func TestValidateToken_RoleIsExplicit(t *testing.T) {
	service := testJWTService(t)

	for _, role := range []types.Role{types.RoleAdmin, types.RoleFarmer, types.RoleBuyer} {
		token, err := service.GenerateToken(testAccount(role))
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, string(role), claims.GetRole())
	}
}

func TestValidateToken_UnknownRoleRejected(t *testing.T) {
	service := testJWTService(t)

	// Forge a token with a role the system does not know
	claims := &Claims{
		AccountID: uuid.New(),
		Role:      types.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := testJWTService(t)
	token, err := service.GenerateToken(testAccount(types.RoleBuyer))
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "a-different-secret", ExpirationHours: 24})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := testJWTService(t)

	claims := &Claims{
		AccountID: uuid.New(),
		Role:      types.RoleBuyer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateToken_Empty(t *testing.T) {
	service := testJWTService(t)
	_, err := service.ValidateToken("")
	assert.Error(t, err)
}

func TestGetProfileID_AdminHasNone(t *testing.T) {
	claims := &Claims{AccountID: uuid.New(), Role: types.RoleAdmin}
	assert.Equal(t, uuid.Nil, claims.GetProfileID())
}
