package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates principal roles.
type UserRole string

// Roles recognised by the API.
const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the verified principal carried by an access token.
// Token minting happens in the identity service; this API only consumes
// the verified claims.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}

// IsStudent reports whether the principal is subject to student gating.
func (c *JWTClaims) IsStudent() bool {
	return c != nil && c.Role == RoleStudent
}
