package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", "registrar-api")
	token, err := svc.Issue(models.User{ID: registrarID, Name: "Reyes", Email: "reyes@example.edu", Role: models.RoleRegistrar}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, registrarID, claims.UserID)
	assert.True(t, claims.IsRegistrar())
	assert.Equal(t, "Reyes", claims.Name)
}

func TestTokenServiceRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenService("other-secret", "registrar-api")
	token, err := issuer.Issue(models.User{ID: studentID, Role: models.RoleStudent}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService("secret", "registrar-api").ValidateToken(token)
	assertCode(t, err, appErrors.ErrUnauthorized)

	_, err = NewTokenService("other-secret", "someone-else").ValidateToken(token)
	assertCode(t, err, appErrors.ErrUnauthorized)
}

func TestTokenServiceRejectsExpiredTokens(t *testing.T) {
	svc := NewTokenService("secret", "")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.Issue(models.User{ID: studentID, Role: models.RoleStudent}, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assertCode(t, err, appErrors.ErrUnauthorized)
}
