package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleSecretary Role = "secretary"
	RoleOfficer   Role = "officer"
	RoleManager   Role = "manager"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSecretary, RoleOfficer, RoleManager:
		return true
	}
	return false
}

// Status represents credit application status
type Status string

const (
	StatusPending  Status = "en_attente"
	StatusApproved Status = "approuve"
	StatusRejected Status = "rejete"
)

// Valid reports whether the status is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decided reports whether the application has already been processed
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// Actor carries the authenticated user identity for a core operation.
// The core trusts this context and does not re-authenticate.
type Actor struct {
	ID       uint
	Username string
	FullName string
	Role     Role
	IsActive bool
}

// RequestMeta carries per-request client information for the audit trail
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// User represents a user in the domain layer
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // Hashed
	FirstName string
	LastName  string
	Role      Role
	Branch    string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
