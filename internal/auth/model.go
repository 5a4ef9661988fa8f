package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered journal user. Accounts are never hard-deleted.
type Account struct {
	ID                  uuid.UUID `gorm:"column:uid;type:uuid;primaryKey"`
	Email               string    `gorm:"uniqueIndex;not null;size:255"`
	Name                string    `gorm:"column:name;not null;size:50"`
	PersonalityType     string    `gorm:"column:personality_type;size:20"`
	PasswordHash        string    `gorm:"column:password;not null;size:255"`
	Active              bool      `gorm:"column:is_active;not null"`
	Verified            bool      `gorm:"column:is_verified;not null"`
	LastLogin           *time.Time
	FailedLoginAttempts int `gorm:"not null"`
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Account) TableName() string {
	return "users"
}

// withoutSecret returns a copy that is safe to hand to callers.
func (a *Account) withoutSecret() *Account {
	out := *a
	out.PasswordHash = ""
	return &out
}
