package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

var (
	jwtService = NewJWTService("test-signing-key", "test-issuer", "test-audience")
	staffID    = id.NewStaffID()
	expiresIn  = time.Hour
)

func Test_GenerateAccessToken(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := jwtService.GenerateAccessToken(staffID, id.RoleAdmin, "admin@example.ci", now, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Add(expiresIn), expiresAt)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, staffID.String(), claims.StaffID)
	assert.Equal(t, string(id.RoleAdmin), claims.Role)
	assert.Equal(t, "admin@example.ci", claims.Email)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.MessageOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(staffID, id.RoleAdmin, "", time.Now().Add(-2*time.Hour), expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongKeyOrAudience(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	token, _, err := other.GenerateAccessToken(staffID, id.RoleAdmin, "", time.Now(), expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	otherAudience := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	token, _, err = otherAudience.GenerateAccessToken(staffID, id.RoleAdmin, "", time.Now(), expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{StaffID: staffID.String(), Role: "super_admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapterParsesTypedClaims(t *testing.T) {
	adapter := NewJWTServiceAdapter(jwtService)
	token, _, err := jwtService.GenerateAccessToken(staffID, id.RoleSuperAdmin, "", time.Now(), expiresIn)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, staffID, claims.StaffID)
	assert.Equal(t, id.RoleSuperAdmin, claims.Role)
	assert.NotEmpty(t, claims.JTI)
}
