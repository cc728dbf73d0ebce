package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, env Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type orderPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope("garage-api", TypeOrderCreated, "order-1", orderPayload{OrderID: "order-1", Status: "pending"})
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, TypeOrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "garage-api", env.Producer)
	assert.Equal(t, "order-1", env.CorrelationID)
	assert.False(t, env.OccurredAt.IsZero())
	assert.JSONEq(t, `{"orderId":"order-1","status":"pending"}`, string(env.Payload))
}

func TestEmitter_PublishesEnvelope(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(env Envelope) bool {
		return env.EventType == TypePaymentProcessed && env.CorrelationID == "order-7" && env.Producer == "garage-api"
	})).Return(nil).Once()

	NewEmitter(pub, "garage-api").Emit(context.Background(), TypePaymentProcessed, "order-7", orderPayload{OrderID: "order-7"})

	pub.AssertExpectations(t)
}

func TestEmitter_SwallowsPublishErrors(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	assert.NotPanics(t, func() {
		NewEmitter(pub, "garage-api").Emit(context.Background(), TypeOrderDeleted, "order-9", nil)
	})
	pub.AssertExpectations(t)
}

func TestToKafkaMessage(t *testing.T) {
	env, err := NewEnvelope("garage-api", TypeOrderStatusChanged, "order-3", orderPayload{OrderID: "order-3", Status: "shipped"})
	require.NoError(t, err)

	msg, err := toKafkaMessage(env)
	require.NoError(t, err)

	assert.Equal(t, "order-3", string(msg.Key))
	assert.Equal(t, env.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderStatusChanged, string(msg.Headers[0].Value))

	var decoded Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, env.EventID, decoded.EventID)

	env.CorrelationID = ""
	msg, err = toKafkaMessage(env)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, string(msg.Key))
}

func TestKafkaPublisher_BufferFullAndClosed(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "garage.events", 1)
	env, err := NewEnvelope("garage-api", TypeOrderCreated, "order-1", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), env))
	assert.ErrorIs(t, p.Publish(context.Background(), env), ErrPublisherBusy)

	p.closed = true
	assert.ErrorIs(t, p.Publish(context.Background(), env), ErrPublisherClosed)
}

func TestToPublishing(t *testing.T) {
	env, err := NewEnvelope("garage-api", TypeAppointmentBooked, "appt-1", map[string]string{"date": "2026-11-02"})
	require.NoError(t, err)

	msg, err := toPublishing(env)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, env.EventID, msg.MessageId)
	assert.Equal(t, "appt-1", msg.CorrelationId)
	assert.Equal(t, TypeAppointmentBooked, msg.Type)
	assert.Contains(t, string(msg.Body), `"date":"2026-11-02"`)
}
