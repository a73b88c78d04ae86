package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	// UserStatusPending marks an account that registered but has not been approved yet.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive marks an account approved by an administrator.
	UserStatusActive UserStatus = "active"
)

// UserRole enumerates the roles recognised by the platform.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User mirrors the persisted representation in the users table.
// Token is the opaque session credential issued once at registration;
// it is stable across logins.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Token        string
	Status       UserStatus
	Online       bool
	Role         UserRole
	RegisteredAt time.Time
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
