package auth

import "time"

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 30 * time.Minute
)

// LockoutPolicy holds the failed-login transitions applied to an Account.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

func NewLockoutPolicy(maxAttempts int, duration time.Duration) LockoutPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxLoginAttempts
	}
	if duration <= 0 {
		duration = defaultLockoutDuration
	}
	return LockoutPolicy{MaxAttempts: maxAttempts, Duration: duration}
}

// Locked reports whether authentication must be refused at now.
// An expired lock counts as unlocked but is left in place until the next success.
func (p LockoutPolicy) Locked(a *Account, now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// RecordFailure counts a wrong password and reports whether it locked the account.
func (p LockoutPolicy) RecordFailure(a *Account, now time.Time) bool {
	a.FailedLoginAttempts++
	if a.FailedLoginAttempts < p.MaxAttempts {
		return false
	}
	until := now.Add(p.Duration)
	a.LockedUntil = &until
	return true
}

func (p LockoutPolicy) RecordSuccess(a *Account) {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
}
