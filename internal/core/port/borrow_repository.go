package port

import (
	"context"
	"time"

	"github.com/karimezz22/Library/internal/core/domain"
)

// BorrowRepository persists borrow requests and answers the queries the
// workflow invariants depend on.
type BorrowRepository interface {
	Create(ctx context.Context, request domain.BorrowRequest) error
	GetByID(ctx context.Context, id string) (*domain.BorrowRequest, error)
	// HasOpenRequest reports whether a pending-or-active request already
	// exists for the (user, book) pair.
	HasOpenRequest(ctx context.Context, userID, bookID string) (bool, error)
	// CountActiveByUser counts the user's active requests; pending requests
	// do not count toward the loan cap.
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	// MarkActive transitions a request to active and stores the due date.
	MarkActive(ctx context.Context, id string, due time.Time) error
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]domain.PendingBorrowRequest, error)
	ListActiveBooksByUser(ctx context.Context, userID string) ([]domain.Book, error)
}
