package models

import "time"

// Account is the credential record the login guard evaluates attempts against.
type Account struct {
	ID                  string     `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockUntil           *time.Time `db:"lock_until" json:"-"`
	LastLoginAttemptAt  *time.Time `db:"last_login_attempt_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// IsLocked reports whether the lock is still in force at now.
// An expired lock counts as absent even though the column still holds a value.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// IsThrottled reports whether an attempt at now falls inside the minimum interval
// since the previous attempt.
func (a *Account) IsThrottled(now time.Time, interval time.Duration) bool {
	if a.LastLoginAttemptAt == nil {
		return false
	}
	return now.Sub(*a.LastLoginAttemptAt) < interval
}

// Clone returns a deep copy so mutations can be applied without aliasing stored state.
func (a *Account) Clone() *Account {
	c := *a
	if a.LockUntil != nil {
		t := *a.LockUntil
		c.LockUntil = &t
	}
	if a.LastLoginAttemptAt != nil {
		t := *a.LastLoginAttemptAt
		c.LastLoginAttemptAt = &t
	}
	return &c
}
