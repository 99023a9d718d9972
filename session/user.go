package session

import "github.com/variamos/sessionauth/token"

// User is the request-facing projection of verified token claims,
// consumed by downstream application handlers.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	UserName    string   `json:"user"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// UserFromClaims maps claims to a User. Returns nil for absent or
// empty claims.
func UserFromClaims(claims *token.Claims) *User {
	if claims == nil || claims.Subject == "" {
		return nil
	}
	return &User{
		ID:          claims.Subject,
		Name:        claims.Name,
		UserName:    claims.UserName,
		Email:       claims.Email,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}
}

// HasRole checks if the user has a specific role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission checks if the user has a specific permission.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
