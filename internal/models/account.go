package models

import (
	"time"
)

// UnusablePassword is stored in the password column of every account.
// Accounts created through Twitter sign-in can never authenticate with a
// password, so the column holds a sentinel that no hash verifier accepts.
const UnusablePassword = "!"

// Account is the local user record mapped onto a Twitter identity.
// TwitterID is the sole externally verifiable key; profile fields are a
// snapshot taken at first login and are not refreshed afterwards.
type Account struct {
	ID              uint   `gorm:"primaryKey"`
	TwitterID       int64  `gorm:"uniqueIndex;not null"`
	ScreenName      string `gorm:"size:15;not null"`
	Name            string `gorm:"size:20;not null"`
	Description     string `gorm:"size:160"`
	Location        string `gorm:"size:30"`
	URL             string
	ProfileImageURL string
	Password        string `gorm:"not null;default:'!'"`

	IsActive    bool `gorm:"not null"`
	IsSuperuser bool `gorm:"not null"`
	IsStaff     bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true if the account carries both admin flags
func (a *Account) IsAdmin() bool {
	return a.IsSuperuser && a.IsStaff
}
