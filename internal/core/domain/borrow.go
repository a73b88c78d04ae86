package domain

import "time"

// BorrowStatus enumerates the stored borrow request states. A rejected or
// returned request is deleted outright, so "closed" has no stored value.
type BorrowStatus string

const (
	// BorrowStatusPending marks a request awaiting admin review.
	BorrowStatusPending BorrowStatus = "pending"
	// BorrowStatusActive marks an accepted request; the book is checked out
	// and the row counts toward the per-user loan cap.
	BorrowStatusActive BorrowStatus = "active"
)

// DefaultMaxActiveLoans caps how many active borrow requests a single user
// may hold at once.
const DefaultMaxActiveLoans = 3

// BorrowRequest links one user to one book across the borrow lifecycle.
// ReturnDue is set only when an admin accepts the request.
type BorrowRequest struct {
	ID         string
	UserID     string
	BookID     string
	Status     BorrowStatus
	BorrowDate time.Time
	ReturnDue  *time.Time
}

// PendingBorrowRequest enriches a pending request with the borrower and
// book attributes an admin needs to review it.
type PendingBorrowRequest struct {
	BorrowRequest
	UserName  string
	UserEmail string
	BookTitle string
}
