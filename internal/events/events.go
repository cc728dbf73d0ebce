// Package events publishes domain events to Kafka or RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	TypeOrderCreated         = "order.created"
	TypeOrderStatusChanged   = "order.status_changed"
	TypeOrderDeleted         = "order.deleted"
	TypePaymentProcessed     = "payment.processed"
	TypePaymentFailed        = "payment.failed"
	TypePaymentCleared       = "payment.cleared"
	TypeAppointmentBooked    = "appointment.booked"
	TypeAppointmentApproved  = "appointment.approved"
	TypeAppointmentCancelled = "appointment.cancelled"
)

const envelopeVersion = 1

var ErrPublisherClosed = errors.New("events: publisher closed")

type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(producer, eventType, correlationID string, payload any) (Envelope, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Envelope{}, fmt.Errorf("events: generate event id: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: encode %s payload: %w", eventType, err)
	}

	return Envelope{
		EventID:       id.String(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Emitter is what services depend on. Emit never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, eventType, correlationID string, payload any)
}

type publishingEmitter struct {
	pub      Publisher
	producer string
}

func NewEmitter(pub Publisher, producer string) Emitter {
	return &publishingEmitter{pub: pub, producer: producer}
}

func (e *publishingEmitter) Emit(ctx context.Context, eventType, correlationID string, payload any) {
	env, err := NewEnvelope(e.producer, eventType, correlationID, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("events: failed to build envelope")
		return
	}

	if err := e.pub.Publish(ctx, env); err != nil {
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("event_id", env.EventID).
			Str("correlation_id", correlationID).
			Msg("events: failed to publish event")
		return
	}

	log.Debug().Str("event_type", eventType).Str("event_id", env.EventID).Msg("events: event published")
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) error { return nil }

func (Noop) Close() error { return nil }
