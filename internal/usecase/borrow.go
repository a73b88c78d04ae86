package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
)

var (
	// ErrDuplicateRequest indicates the user already has an open request for the book.
	ErrDuplicateRequest = errors.New("borrow request already open for this book")
	// ErrLoanLimitReached indicates accepting the request would exceed the active loan cap.
	ErrLoanLimitReached = errors.New("active loan limit reached")
	// ErrRequestNotPending indicates the request has already been accepted.
	ErrRequestNotPending = errors.New("borrow request is not pending")
)

// BorrowService runs the request/accept/reject borrow workflow.
type BorrowService struct {
	borrows        port.BorrowRepository
	books          port.BookRepository
	uow            port.UnitOfWork
	events         port.EventPublisher
	maxActiveLoans int
	logger         *zap.Logger
}

// NewBorrowService constructs the borrow service. A non-positive cap falls
// back to the default.
func NewBorrowService(borrows port.BorrowRepository, books port.BookRepository, uow port.UnitOfWork, events port.EventPublisher, maxActiveLoans int, log *zap.Logger) *BorrowService {
	if maxActiveLoans <= 0 {
		maxActiveLoans = domain.DefaultMaxActiveLoans
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BorrowService{
		borrows:        borrows,
		books:          books,
		uow:            uow,
		events:         events,
		maxActiveLoans: maxActiveLoans,
		logger:         log,
	}
}

// Request opens a pending borrow request for the user and book. The
// duplicate check and the insert run under the user lock so two concurrent
// requests for the same book cannot both pass the check.
func (s *BorrowService) Request(ctx context.Context, userID, bookID string) (domain.BorrowRequest, error) {
	if userID == "" || bookID == "" {
		return domain.BorrowRequest{}, validationErr("user id and book id are required")
	}

	request := domain.BorrowRequest{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		Status:     domain.BorrowStatusPending,
		BorrowDate: time.Now().UTC(),
	}

	err := s.uow.WithinUserLock(ctx, userID, func(repos port.TxRepositories) error {
		if _, err := repos.Books.GetByID(ctx, bookID); err != nil {
			return err
		}

		open, err := repos.Borrows.HasOpenRequest(ctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("check open request: %w", err)
		}
		if open {
			return ErrDuplicateRequest
		}

		return repos.Borrows.Create(ctx, request)
	})
	if err != nil {
		return domain.BorrowRequest{}, err
	}

	event := domain.BorrowRequestedEvent{
		EventID:     uuid.NewString(),
		RequestID:   request.ID,
		UserID:      userID,
		BookID:      bookID,
		RequestedAt: request.BorrowDate,
	}
	if err := s.events.PublishBorrowRequested(ctx, event); err != nil {
		s.logger.Warn("publish borrow requested failed",
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
	}

	return request, nil
}

// ListPending returns every pending request with borrower and book details.
// An empty queue is not an error.
func (s *BorrowService) ListPending(ctx context.Context) ([]domain.PendingBorrowRequest, error) {
	pending, err := s.borrows.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return pending, nil
}

// Accept activates a pending request with the due date the admin supplied.
// The loan cap is enforced here, under the borrower's lock, because pending
// requests do not count toward it.
func (s *BorrowService) Accept(ctx context.Context, requestID, acceptedBy string, due time.Time) (domain.BorrowRequest, error) {
	if requestID == "" {
		return domain.BorrowRequest{}, validationErr("request id is required")
	}
	if due.IsZero() {
		return domain.BorrowRequest{}, validationErr("return due date is required")
	}
	if due.Before(time.Now().UTC()) {
		return domain.BorrowRequest{}, validationErr("return due date must be in the future")
	}

	request, err := s.borrows.GetByID(ctx, requestID)
	if err != nil {
		return domain.BorrowRequest{}, err
	}

	err = s.uow.WithinUserLock(ctx, request.UserID, func(repos port.TxRepositories) error {
		current, err := repos.Borrows.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != domain.BorrowStatusPending {
			return ErrRequestNotPending
		}

		active, err := repos.Borrows.CountActiveByUser(ctx, request.UserID)
		if err != nil {
			return fmt.Errorf("count active loans: %w", err)
		}
		if active >= s.maxActiveLoans {
			return ErrLoanLimitReached
		}

		return repos.Borrows.MarkActive(ctx, requestID, due)
	})
	if err != nil {
		return domain.BorrowRequest{}, err
	}

	request.Status = domain.BorrowStatusActive
	request.ReturnDue = &due

	event := domain.BorrowAcceptedEvent{
		EventID:    uuid.NewString(),
		RequestID:  request.ID,
		UserID:     request.UserID,
		BookID:     request.BookID,
		AcceptedBy: acceptedBy,
		ReturnDue:  due,
		AcceptedAt: time.Now().UTC(),
	}
	if err := s.events.PublishBorrowAccepted(ctx, event); err != nil {
		s.logger.Warn("publish borrow accepted failed",
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
	}

	return *request, nil
}

// Reject removes the request outright, closing it.
func (s *BorrowService) Reject(ctx context.Context, requestID, rejectedBy string) error {
	if requestID == "" {
		return validationErr("request id is required")
	}

	request, err := s.borrows.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.borrows.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("delete borrow request: %w", err)
	}

	event := domain.BorrowRejectedEvent{
		EventID:    uuid.NewString(),
		RequestID:  request.ID,
		UserID:     request.UserID,
		BookID:     request.BookID,
		RejectedBy: rejectedBy,
		RejectedAt: time.Now().UTC(),
	}
	if err := s.events.PublishBorrowRejected(ctx, event); err != nil {
		s.logger.Warn("publish borrow rejected failed",
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
	}

	return nil
}

// ActiveBooks lists the books the user currently has checked out.
func (s *BorrowService) ActiveBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	if userID == "" {
		return nil, validationErr("user id is required")
	}

	books, err := s.borrows.ListActiveBooksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active books: %w", err)
	}

	return books, nil
}
