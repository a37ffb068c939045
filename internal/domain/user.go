package domain

import "time"

// Provider identifies the credential origin of an account.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for platform accounts. PasswordHash is empty
// for accounts created through delegated (OAuth) login.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Provider     Provider
	RoleID       string
	RoleName     string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
