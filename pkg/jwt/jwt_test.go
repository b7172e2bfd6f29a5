package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	service := NewService("test-secret-key-123456789", time.Hour)

	subjectID := uuid.New()
	clientID := uuid.New()

	token, err := service.GenerateSessionToken(subjectID, clientID, RoleEndUser, "Kasun Fernando")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, subjectID, claims.SubjectID)
	assert.Equal(t, clientID, claims.ClientID)
	assert.Equal(t, RoleEndUser, claims.Role)
	assert.Equal(t, "Kasun Fernando", claims.Name)
	assert.Equal(t, "visitor-management", claims.Issuer)
	assert.Equal(t, subjectID.String(), claims.Subject)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	service := NewService("test-secret-key-123456789", time.Hour)
	other := NewService("a-completely-different-secret", time.Hour)

	token, err := service.GenerateSessionToken(uuid.New(), uuid.New(), RoleClient, "Acme Holdings")
	require.NoError(t, err)

	_, err = other.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestValidateSessionToken_Expired(t *testing.T) {
	service := NewService("test-secret-key-123456789", -time.Minute)

	token, err := service.GenerateSessionToken(uuid.New(), uuid.New(), RoleGuard, "gate")
	require.NoError(t, err)

	_, err = service.ValidateSessionToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestIsTokenExpired_ValidToken(t *testing.T) {
	service := NewService("test-secret-key-123456789", time.Hour)

	token, err := service.GenerateSessionToken(uuid.New(), uuid.New(), RoleClient, "Acme Holdings")
	require.NoError(t, err)

	assert.False(t, service.IsTokenExpired(token))
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	service := NewService("test-secret-key-123456789", time.Hour)

	_, err := service.ValidateSessionToken("not-a-jwt")
	assert.Error(t, err)
	assert.False(t, service.IsTokenExpired("not-a-jwt"))
}
