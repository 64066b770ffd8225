package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is advisory only: the upstream API is the security boundary.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleViewer Role = "viewer"
)

// ParseRole normalises the casing differences between upstream endpoints
// (auth/me answers "ADMIN", users answers "admin").
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// User models an authenticated actor as reported by the upstream API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"ativo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnmarshalJSON normalises the role on the way in.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = User(a)
	u.Role = ParseRole(string(u.Role))
	return nil
}

// HasRole reports whether the user holds one of roles. An empty set allows everyone.
func (u *User) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsTechnician reports whether the user can be assigned to an order.
func (u *User) IsTechnician() bool {
	return u.Role == RoleAgent && u.Active
}

// UserSummary is the embedded reference the upstream attaches to orders.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// Credentials is what the login form collects.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// LoginResult is the upstream answer to a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
