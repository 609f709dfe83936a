package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}

// IsRegistrar reports whether the caller acts for the registrar's office.
func (c *JWTClaims) IsRegistrar() bool {
	return c != nil && c.Role == RoleRegistrar
}
