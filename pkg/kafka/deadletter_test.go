package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) ProduceJSON(ctx context.Context, topic string, key string, data interface{}, headers map[string]string) error {
	args := m.Called(ctx, topic, key, data, headers)
	return args.Error(0)
}

func TestDeadLetterTopic(t *testing.T) {
	assert.Equal(t, "tier.updated.dlq", DeadLetterTopic("tier.updated"))
}

func TestDeadLetterWriter_Write(t *testing.T) {
	pub := new(mockPublisher)
	w := NewDeadLetterWriter(pub, "tier-events")

	msg := &DeadLetter{
		ID:            "change-1",
		OriginalTopic: "tier.updated",
		OriginalKey:   "u1",
		Payload:       json.RawMessage(`{"new_tier":"gold"}`),
		Error:         "broker unavailable",
	}

	pub.On("ProduceJSON", mock.Anything, "tier.updated.dlq", "u1", msg, mock.MatchedBy(func(h map[string]string) bool {
		return h["original_topic"] == "tier.updated" && h["error"] == "broker unavailable" && h["source"] == "tier-events"
	})).Return(nil)

	require.NoError(t, w.Write(context.Background(), msg))
	assert.Equal(t, "tier-events", msg.Source)
	assert.False(t, msg.FailedAt.IsZero())
	pub.AssertExpectations(t)
}

func TestDeadLetterWriter_WriteNil(t *testing.T) {
	w := NewDeadLetterWriter(new(mockPublisher), "tier-events")
	assert.Error(t, w.Write(context.Background(), nil))
}

func TestDeadLetterWriter_PublishFails(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("ProduceJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("no brokers"))

	w := NewDeadLetterWriter(pub, "tier-events")
	err := w.Write(context.Background(), &DeadLetter{OriginalTopic: "tier.updated"})
	assert.Error(t, err)
}
