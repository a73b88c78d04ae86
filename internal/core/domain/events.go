package domain

import "time"

// UserRegisteredEvent represents the payload for library.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Name         string
	Email        string
	Status       string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserApprovedEvent represents the payload for library.user.approved messages.
type UserApprovedEvent struct {
	EventID    string
	UserID     string
	ApprovedBy string
	ApprovedAt time.Time
	Metadata   map[string]any
}

// BorrowRequestedEvent represents the payload for library.borrow.requested messages.
type BorrowRequestedEvent struct {
	EventID     string
	RequestID   string
	UserID      string
	BookID      string
	RequestedAt time.Time
	Metadata    map[string]any
}

// BorrowAcceptedEvent represents the payload for library.borrow.accepted messages.
type BorrowAcceptedEvent struct {
	EventID    string
	RequestID  string
	UserID     string
	BookID     string
	AcceptedBy string
	ReturnDue  time.Time
	AcceptedAt time.Time
	Metadata   map[string]any
}

// BorrowRejectedEvent represents the payload for library.borrow.rejected messages.
type BorrowRejectedEvent struct {
	EventID    string
	RequestID  string
	UserID     string
	BookID     string
	RejectedBy string
	RejectedAt time.Time
	Metadata   map[string]any
}
