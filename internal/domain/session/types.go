// Package session holds the client-side authentication state: the bearer
// token, the identity of the logged-in user, and the keys under which both
// are persisted between runs.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the closed set of roles the backend assigns to users.
type Role string

const (
	// RoleMember is a regular studio member.
	RoleMember Role = "ROLE_MEMBER"
	// RoleTrainer is a trainer running classes.
	RoleTrainer Role = "ROLE_TRAINER"
	// RoleAdmin is a studio administrator.
	RoleAdmin Role = "ROLE_ADMIN"
	// RoleUnknown is any value the backend sends that is not one of the above,
	// including an empty role.
	RoleUnknown Role = ""
)

// ParseRole maps a raw backend role to the closed enumeration.
// Both the prefixed ("ROLE_ADMIN") and short ("ADMIN") forms are accepted.
func ParseRole(raw string) Role {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_") {
	case "MEMBER":
		return RoleMember
	case "TRAINER":
		return RoleTrainer
	case "ADMIN":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Short returns the role without its "ROLE_" prefix ("ADMIN"), which is the
// form access rules are written against. RoleUnknown returns "".
func (r Role) Short() string {
	return strings.TrimPrefix(string(r), "ROLE_")
}

// ID is a backend identifier. The backend serializes IDs as JSON numbers, but
// they are persisted and passed around as strings.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// User is the identity record returned by the backend after login,
// registration, or token verification.
type User struct {
	ID           ID     `json:"id"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Role         string `json:"role,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ParsedRole returns the user's role as a Role.
func (u *User) ParsedRole() Role {
	if u == nil {
		return RoleUnknown
	}
	return ParseRole(u.Role)
}

// DisplayName returns "First Last", falling back to the username and then "User".
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		return name
	case u.Username != "":
		return u.Username
	default:
		return "User"
	}
}

// Initials returns the first letter of the first and last names, or "U".
func (u *User) Initials() string {
	if u == nil {
		return "U"
	}
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	if b.Len() == 0 {
		return "U"
	}
	return strings.ToUpper(b.String())
}

// Profile is the registration payload.
type Profile struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Plan      string `json:"plan,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is what the login and registration endpoints return.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegistrationForm is what a prospective member fills in. It is validated
// locally and turned into a Profile before anything is sent.
type RegistrationForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Plan            string `json:"plan,omitempty"`
}

// MemberProfile builds the ROLE_MEMBER registration payload. The email doubles
// as the username.
func (f RegistrationForm) MemberProfile() Profile {
	return Profile{
		Email:     f.Email,
		Password:  f.Password,
		Username:  f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Role:      RoleMember,
		Plan:      f.Plan,
	}
}
