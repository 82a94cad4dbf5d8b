package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) ProduceJSON(ctx context.Context, topic string, key string, data interface{}, headers map[string]string) error {
	args := m.Called(ctx, topic, key, data, headers)
	return args.Error(0)
}

func sampleChange() *domain.TierChange {
	return &domain.TierChange{
		ID:           "change-1",
		ViewerID:     "u1",
		PreviousTier: domain.TierFree,
		NewTier:      domain.TierGold,
		ChangedAt:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func changePayload(t *testing.T, change *domain.TierChange) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(change)
	require.NoError(t, err)
	return payload
}

func TestKafkaTierChangePublisher_Publishes(t *testing.T) {
	producer := new(MockProducer)
	pub := NewKafkaTierChangePublisher(producer, "", "tier-events", 0)
	change := sampleChange()

	producer.On("ProduceJSON", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), DefaultTierTopic, "u1", changePayload(t, change), mock.Anything).Return(nil).Once()

	assert.NoError(t, pub.PublishTierChange(context.Background(), change))
	producer.AssertExpectations(t)
}

func TestKafkaTierChangePublisher_DeadLetters(t *testing.T) {
	producer := new(MockProducer)
	pub := NewKafkaTierChangePublisher(producer, "tier.updated", "tier-events", 0)
	change := sampleChange()

	producer.On("ProduceJSON", mock.Anything, "tier.updated", "u1", changePayload(t, change), mock.Anything).Return(errors.New("not leader")).Once()
	producer.On("ProduceJSON", mock.Anything, "tier.updated.dlq", "u1", mock.MatchedBy(func(dl *kafka.DeadLetter) bool {
		return dl.ID == "change-1" && dl.Error == "not leader" && dl.OriginalTopic == "tier.updated" &&
			string(dl.Payload) == string(changePayload(t, change))
	}), mock.Anything).Return(nil).Once()

	assert.NoError(t, pub.PublishTierChange(context.Background(), change))
	producer.AssertExpectations(t)
}

func TestKafkaTierChangePublisher_DeadLetterFails(t *testing.T) {
	producer := new(MockProducer)
	pub := NewKafkaTierChangePublisher(producer, "tier.updated", "tier-events", 0)

	producer.On("ProduceJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("cluster down")).Twice()

	err := pub.PublishTierChange(context.Background(), sampleChange())
	assert.Error(t, err)
	producer.AssertNumberOfCalls(t, "ProduceJSON", 2)
}

// stalledProducer blocks until its context ends, like a producer facing an unreachable cluster
type stalledProducer struct{}

func (stalledProducer) ProduceJSON(ctx context.Context, topic string, key string, data interface{}, headers map[string]string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestKafkaTierChangePublisher_StalledClusterIsBounded(t *testing.T) {
	pub := NewKafkaTierChangePublisher(stalledProducer{}, "tier.updated", "tier-events", 20*time.Millisecond)

	start := time.Now()
	err := pub.PublishTierChange(context.Background(), sampleChange())
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, time.Second)
}

func TestKafkaTierChangePublisher_IgnoresCallerCancellation(t *testing.T) {
	producer := new(MockProducer)
	pub := NewKafkaTierChangePublisher(producer, "tier.updated", "tier-events", time.Second)

	producer.On("ProduceJSON", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), "tier.updated", "u1", mock.Anything, mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, pub.PublishTierChange(ctx, sampleChange()))
	producer.AssertExpectations(t)
}

func TestNoopTierChangePublisher(t *testing.T) {
	assert.NoError(t, NoopTierChangePublisher{}.PublishTierChange(context.Background(), sampleChange()))
}
