package service

import (
	"strings"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

// authorizeOwner lets registrars through and restricts everyone else to their own records.
func authorizeOwner(caller *models.JWTClaims, ownerID int64) error {
	if caller == nil {
		return appErrors.ErrUnauthorized
	}
	if caller.IsRegistrar() || caller.UserID == ownerID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this resource")
}

func blankToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
