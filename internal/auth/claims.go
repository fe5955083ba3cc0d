package auth

import "helping-hands/shiftdesk/internal/constants"

// UserClaims is what the identity middleware hands to handlers.
type UserClaims interface {
	Username() string
	Role() constants.Role
	Source() string
	HasPermission(action Action) bool
}

// TokenClaims come from a verified bearer token.
type TokenClaims struct {
	User      string
	RoleValue constants.Role
	TokenID   string
}

func (c *TokenClaims) Username() string                 { return c.User }
func (c *TokenClaims) Role() constants.Role             { return c.RoleValue }
func (c *TokenClaims) Source() string                   { return "JWT" }
func (c *TokenClaims) HasPermission(action Action) bool { return Allowed(c.RoleValue, action) }

// HeaderClaims come from a trusted X-Username header (development setups).
type HeaderClaims struct {
	User      string
	RoleValue constants.Role
}

func (c *HeaderClaims) Username() string                 { return c.User }
func (c *HeaderClaims) Role() constants.Role             { return c.RoleValue }
func (c *HeaderClaims) Source() string                   { return "HEADER" }
func (c *HeaderClaims) HasPermission(action Action) bool { return Allowed(c.RoleValue, action) }
