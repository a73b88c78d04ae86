package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
	"github.com/karimezz22/Library/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes library.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Name         string         `json:"name"`
		Email        string         `json:"email"`
		Status       string         `json:"status"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Name:         event.Name,
		Email:        event.Email,
		Status:       event.Status,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "library.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserApproved publishes library.user.approved events.
func (p *EventPublisher) PublishUserApproved(ctx context.Context, event domain.UserApprovedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		ApprovedBy string         `json:"approved_by"`
		ApprovedAt time.Time      `json:"approved_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		ApprovedBy: event.ApprovedBy,
		ApprovedAt: event.ApprovedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "library.user.approved", event.UserID, event.ApprovedAt, payload)
}

// PublishBorrowRequested publishes library.borrow.requested events.
func (p *EventPublisher) PublishBorrowRequested(ctx context.Context, event domain.BorrowRequestedEvent) error {
	payload := struct {
		RequestID   string         `json:"request_id"`
		UserID      string         `json:"user_id"`
		BookID      string         `json:"book_id"`
		RequestedAt time.Time      `json:"requested_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		RequestID:   event.RequestID,
		UserID:      event.UserID,
		BookID:      event.BookID,
		RequestedAt: event.RequestedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "library.borrow.requested", event.UserID, event.RequestedAt, payload)
}

// PublishBorrowAccepted publishes library.borrow.accepted events.
func (p *EventPublisher) PublishBorrowAccepted(ctx context.Context, event domain.BorrowAcceptedEvent) error {
	payload := struct {
		RequestID  string         `json:"request_id"`
		UserID     string         `json:"user_id"`
		BookID     string         `json:"book_id"`
		AcceptedBy string         `json:"accepted_by"`
		ReturnDue  time.Time      `json:"return_due"`
		AcceptedAt time.Time      `json:"accepted_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		RequestID:  event.RequestID,
		UserID:     event.UserID,
		BookID:     event.BookID,
		AcceptedBy: event.AcceptedBy,
		ReturnDue:  event.ReturnDue.UTC(),
		AcceptedAt: event.AcceptedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "library.borrow.accepted", event.UserID, event.AcceptedAt, payload)
}

// PublishBorrowRejected publishes library.borrow.rejected events.
func (p *EventPublisher) PublishBorrowRejected(ctx context.Context, event domain.BorrowRejectedEvent) error {
	payload := struct {
		RequestID  string         `json:"request_id"`
		UserID     string         `json:"user_id"`
		BookID     string         `json:"book_id"`
		RejectedBy string         `json:"rejected_by"`
		RejectedAt time.Time      `json:"rejected_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		RequestID:  event.RequestID,
		UserID:     event.UserID,
		BookID:     event.BookID,
		RejectedBy: event.RejectedBy,
		RejectedAt: event.RejectedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "library.borrow.rejected", event.UserID, event.RejectedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
