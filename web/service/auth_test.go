package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sensorlab/doorwatch/database/model"
)

func newTestAuthService() *AuthService {
	return &AuthService{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	s := newTestAuthService()

	token, err := s.IssueAccessToken("alice", model.RoleAuditor)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, model.RoleAuditor, claims.Role)
	assert.False(t, claims.IsRefreshToken())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateExpiredToken(t *testing.T) {
	s := newTestAuthService()
	s.AccessTTL = -time.Minute

	token, err := s.IssueAccessToken("alice", model.RoleViewer)
	assert.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	s := newTestAuthService()
	token, err := s.IssueAccessToken("alice", model.RoleViewer)
	assert.NoError(t, err)

	other := newTestAuthService()
	other.Secret = []byte("different-secret")

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateGarbageToken(t *testing.T) {
	s := newTestAuthService()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	}
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	s := newTestAuthService()

	token, err := s.issue("alice", model.Role("superuser"), time.Minute, "")
	assert.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRefreshFlow(t *testing.T) {
	s := newTestAuthService()

	refresh, err := s.IssueRefreshToken("bob", model.RoleAdmin)
	assert.NoError(t, err)

	claims, err := s.ValidateToken(refresh)
	assert.NoError(t, err)
	assert.True(t, claims.IsRefreshToken())

	access, err := s.Refresh(refresh)
	assert.NoError(t, err)

	claims, err = s.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "bob", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.False(t, claims.IsRefreshToken())
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := newTestAuthService()

	access, err := s.IssueAccessToken("bob", model.RoleAdmin)
	assert.NoError(t, err)

	_, err = s.Refresh(access)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestLogin(t *testing.T) {
	setupTestDB(t)
	s := newTestAuthService()

	access, refresh, err := s.Login("admin", "adminpw")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := s.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, _, err = s.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login("nobody", "adminpw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
