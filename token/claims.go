package token

import "github.com/golang-jwt/jwt/v5"

// Subject is the entity a session token is issued for.
type Subject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	UserName    string   `json:"userName"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Claims is the signed payload of a session token. The registered
// claims carry sub, iat, exp, aud and jti.
type Claims struct {
	Name        string   `json:"name,omitempty"`
	UserName    string   `json:"userName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	jwt.RegisteredClaims
}
