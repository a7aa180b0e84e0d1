package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var staff = domain.Caller{
	StaffID:      domain.StaffID(uuid.New()),
	Role:         domain.RoleLGAAdmin,
	Jurisdiction: 3,
}
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(staff, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, staff.StaffID.String(), claims.StaffID)
	assert.Equal(t, "lga_admin", claims.Role)
	assert.Equal(t, 3, claims.LGAID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.MessageOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(staff, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	token, err := other.GenerateAccessToken(staff, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateCaller(t *testing.T) {
	t.Run("round trips caller identity", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(staff, expiresIn)
		require.NoError(t, err)

		caller, err := jwtService.ValidateCaller(token)
		require.NoError(t, err)
		assert.Equal(t, staff, caller)
	})

	t.Run("scoped role without lga is rejected", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(domain.Caller{
			StaffID: domain.StaffID(uuid.New()),
			Role:    domain.RoleLGAAdmin,
		}, expiresIn)
		require.NoError(t, err)

		_, err = jwtService.ValidateCaller(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			StaffID: uuid.NewString(),
			Role:    "janitor",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    "test-issuer",
				Audience:  []string{"test-audience"},
			},
		})
		signed, err := token.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = jwtService.ValidateCaller(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
