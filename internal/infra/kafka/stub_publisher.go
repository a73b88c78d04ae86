package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs library.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"name":          event.Name,
		"email":         event.Email,
		"status":        event.Status,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("library.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserApproved logs library.user.approved events.
func (p *StubPublisher) PublishUserApproved(_ context.Context, event domain.UserApprovedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"approved_by": event.ApprovedBy,
		"approved_at": event.ApprovedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("library.user.approved", event.UserID, event.ApprovedAt, payload)
	return nil
}

// PublishBorrowRequested logs library.borrow.requested events.
func (p *StubPublisher) PublishBorrowRequested(_ context.Context, event domain.BorrowRequestedEvent) error {
	payload := map[string]any{
		"request_id":   event.RequestID,
		"user_id":      event.UserID,
		"book_id":      event.BookID,
		"requested_at": event.RequestedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("library.borrow.requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishBorrowAccepted logs library.borrow.accepted events.
func (p *StubPublisher) PublishBorrowAccepted(_ context.Context, event domain.BorrowAcceptedEvent) error {
	payload := map[string]any{
		"request_id":  event.RequestID,
		"user_id":     event.UserID,
		"book_id":     event.BookID,
		"accepted_by": event.AcceptedBy,
		"return_due":  event.ReturnDue,
		"accepted_at": event.AcceptedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("library.borrow.accepted", event.UserID, event.AcceptedAt, payload)
	return nil
}

// PublishBorrowRejected logs library.borrow.rejected events.
func (p *StubPublisher) PublishBorrowRejected(_ context.Context, event domain.BorrowRejectedEvent) error {
	payload := map[string]any{
		"request_id":  event.RequestID,
		"user_id":     event.UserID,
		"book_id":     event.BookID,
		"rejected_by": event.RejectedBy,
		"rejected_at": event.RejectedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("library.borrow.rejected", event.UserID, event.RejectedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
