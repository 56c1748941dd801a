package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is a closed set. The zero value is a standard user.
type Role string

const (
	RoleStandard Role = ""
	RoleAdmin    Role = "admin"
)

// ParseRole accepts "admin", or "" / "none" for a standard user.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "", "none":
		return RoleStandard, nil
	}
	return RoleStandard, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "none"
}

var emailPattern = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-.]+\.[a-z]+$`)

const minFirstNameLength = 2

type User struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       string
	PasswordDigest string
	Token          string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

func (u User) Validate() FieldErrors {
	errs := FieldErrors{}
	switch {
	case blank(u.Email):
		errs.Add("email", MsgBlank)
	case !emailPattern.MatchString(u.Email):
		errs.Add("email", "is invalid")
	}
	switch {
	case blank(u.FirstName):
		errs.Add("first_name", MsgBlank)
	case utf8.RuneCountInString(strings.TrimSpace(u.FirstName)) < minFirstNameLength:
		errs.Add("first_name", fmt.Sprintf("is too short (minimum is %d characters)", minFirstNameLength))
	}
	return errs
}

// Principal is the authenticated actor a command runs on behalf of.
// The zero value is an anonymous caller.
type Principal struct {
	ID   int64
	Role Role
}

func Anonymous() Principal { return Principal{} }

func (p Principal) Authenticated() bool { return p.ID > 0 }

func (p Principal) IsAdmin() bool { return p.Authenticated() && p.Role == RoleAdmin }
