package models

import (
	"time"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLoginInitiated     EventType = "LOGIN_INITIATED"
	EventLoginSuccess       EventType = "LOGIN_SUCCESS"
	EventLoginRejected      EventType = "LOGIN_REJECTED"
	EventLogout             EventType = "LOGOUT"
	EventAccountProvisioned EventType = "ACCOUNT_PROVISIONED"
	EventRateLimitExceeded  EventType = "RATE_LIMIT_EXCEEDED"
)

// AuditLog records one authentication-related event
type AuditLog struct {
	ID              string    `gorm:"primaryKey"`
	EventType       EventType `gorm:"index;not null"`
	ActorID         uint      `gorm:"index"` // local account ID, 0 when unresolved
	ActorScreenName string
	ActorIP         string
	Success         bool
	ErrorMessage    string
	UserAgent       string
	RequestPath     string
	CreatedAt       time.Time `gorm:"index"`
}

// TableName overrides the default table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
