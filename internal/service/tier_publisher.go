package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/pkg/kafka"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"go.uber.org/zap"
)

const (
	// DefaultTierTopic carries TierChange records
	DefaultTierTopic = "tier.updated"
	// DefaultPublishTimeout bounds each produce attempt. A publish makes at most
	// two attempts (topic, then dead-letter topic).
	DefaultPublishTimeout = 2 * time.Second
)

// NoopTierChangePublisher drops every change. Used when Kafka is disabled.
type NoopTierChangePublisher struct{}

// PublishTierChange does nothing
func (NoopTierChangePublisher) PublishTierChange(ctx context.Context, change *domain.TierChange) error {
	return nil
}

// KafkaTierChangePublisher produces TierChange records keyed by viewer ID.
// Records that cannot be produced are parked on the topic's dead-letter topic.
type KafkaTierChangePublisher struct {
	producer   kafka.JSONPublisher
	deadLetter *kafka.DeadLetterWriter
	topic      string
	timeout    time.Duration
}

// NewKafkaTierChangePublisher creates a KafkaTierChangePublisher.
// A zero timeout uses DefaultPublishTimeout.
func NewKafkaTierChangePublisher(producer kafka.JSONPublisher, topic, source string, timeout time.Duration) *KafkaTierChangePublisher {
	if topic == "" {
		topic = DefaultTierTopic
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &KafkaTierChangePublisher{
		producer:   producer,
		deadLetter: kafka.NewDeadLetterWriter(producer, source),
		topic:      topic,
		timeout:    timeout,
	}
}

// PublishTierChange produces change, falling back to the dead-letter topic.
// Each attempt is bounded by the publisher timeout and survives cancellation
// of ctx, since the change is already persisted when this runs.
func (p *KafkaTierChangePublisher) PublishTierChange(ctx context.Context, change *domain.TierChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal tier change: %w", err)
	}

	headers := map[string]string{
		"content_type": "application/json",
		"change_id":    change.ID,
	}

	ctx = context.WithoutCancel(ctx)

	produceCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err = p.producer.ProduceJSON(produceCtx, p.topic, change.ViewerID, json.RawMessage(payload), headers)
	cancel()
	if err == nil {
		return nil
	}

	dlqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	dlqErr := p.deadLetter.Write(dlqCtx, &kafka.DeadLetter{
		ID:            change.ID,
		OriginalTopic: p.topic,
		OriginalKey:   change.ViewerID,
		Payload:       payload,
		Error:         err.Error(),
	})
	if dlqErr != nil {
		return errors.Join(err, fmt.Errorf("dead letter: %w", dlqErr))
	}

	logger.Warn("tier change parked on dead-letter topic",
		zap.String("topic", kafka.DeadLetterTopic(p.topic)),
		zap.String("change_id", change.ID),
		zap.Error(err),
	)
	return nil
}
