package port

import (
	"context"

	"github.com/karimezz22/Library/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserApproved(ctx context.Context, event domain.UserApprovedEvent) error
	PublishBorrowRequested(ctx context.Context, event domain.BorrowRequestedEvent) error
	PublishBorrowAccepted(ctx context.Context, event domain.BorrowAcceptedEvent) error
	PublishBorrowRejected(ctx context.Context, event domain.BorrowRejectedEvent) error
}
