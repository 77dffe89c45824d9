package domain

import "time"

// IdentityRegisteredEvent is published when a new identity completes registration.
type IdentityRegisteredEvent struct {
	EventID      string
	IdentityID   string
	Email        string
	Role         Role
	RegisteredAt time.Time
}

// LoginSucceededEvent is published after a successful credential check.
type LoginSucceededEvent struct {
	EventID    string
	IdentityID string
	Email      string
	FromCache  bool
	OccurredAt time.Time
}

// LoginFailedEvent is published after a failed credential check.
type LoginFailedEvent struct {
	EventID           string
	Email             string
	RemainingAttempts int
	OccurredAt        time.Time
}

// AccountLockedEvent is published when the failure counter reaches the lockout threshold.
type AccountLockedEvent struct {
	EventID     string
	Email       string
	LockedAt    time.Time
	UnlocksAt   time.Time
	Consecutive int
}

// PasswordChangedEvent is published when an identity sets a new password.
type PasswordChangedEvent struct {
	EventID    string
	IdentityID string
	ChangedAt  time.Time
}
