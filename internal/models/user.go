package models

import "time"

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive              UserStatus = "active"
	UserStatusInactive            UserStatus = "inactive"
	UserStatusSuspended           UserStatus = "suspended"
	UserStatusPendingVerification UserStatus = "pending_verification"
)

// Login lockout policy: after MaxLoginFailures consecutive failed attempts
// the account is locked for LockoutDuration. A successful login or an
// expired lock resets the counter.
const (
	MaxLoginFailures = 5
	LockoutDuration  = 2 * time.Hour
)

// ResetTokenTTL is the validity window for password-reset tokens.
const ResetTokenTTL = 10 * time.Minute

// User represents a registered user account.
type User struct {
	Base
	Name     string     `gorm:"not null" json:"name"`
	Email    string     `gorm:"uniqueIndex;not null" json:"email"`
	Password string     `gorm:"not null" json:"-"`
	Status   UserStatus `gorm:"not null;default:active" json:"status"`
	IsAdmin  bool       `gorm:"default:false" json:"-"`

	// Optional profile fields
	Age      *int     `json:"age,omitempty"`
	HeightCm *float64 `json:"height,omitempty"`
	WeightKg *float64 `json:"weight,omitempty"`

	// Email verification
	EmailVerified     bool   `gorm:"default:false" json:"emailVerified"`
	VerificationToken string `json:"-"`

	// Password reset
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// Lockout state
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`

	// Relationships
	Settings     *UserSettings        `gorm:"foreignKey:UserID" json:"-"`
	Measurements []PostureMeasurement `gorm:"foreignKey:UserID" json:"-"`
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RegisterLoginFailure records a failed login attempt. Reaching
// MaxLoginFailures sets LockedUntil. If a previous lock has already
// expired, the counter restarts from this attempt.
func (u *User) RegisterLoginFailure(now time.Time) {
	if u.LockedUntil != nil && !u.LockedUntil.After(now) {
		u.LockedUntil = nil
		u.FailedLoginAttempts = 0
	}

	u.FailedLoginAttempts++
	u.LastFailedLogin = &now

	if u.FailedLoginAttempts >= MaxLoginFailures {
		lockUntil := now.Add(LockoutDuration)
		u.LockedUntil = &lockUntil
	}
}

// ResetLoginFailures clears the lockout state after a successful login.
func (u *User) ResetLoginFailures() {
	u.FailedLoginAttempts = 0
	u.LastFailedLogin = nil
	u.LockedUntil = nil
}

// ResetTokenValid reports whether the stored password-reset token matches
// and has not expired.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	return u.ResetToken != "" &&
		u.ResetToken == token &&
		u.ResetTokenExpiry != nil &&
		u.ResetTokenExpiry.After(now)
}
