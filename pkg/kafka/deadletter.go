package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DeadLetterSuffix is appended to a topic name to form its dead-letter topic
const DeadLetterSuffix = ".dlq"

// JSONPublisher publishes a JSON record
type JSONPublisher interface {
	ProduceJSON(ctx context.Context, topic string, key string, data interface{}, headers map[string]string) error
}

// DeadLetter is a record that could not be delivered to its topic
type DeadLetter struct {
	ID            string          `json:"id"`
	OriginalTopic string          `json:"original_topic"`
	OriginalKey   string          `json:"original_key"`
	Payload       json.RawMessage `json:"payload"`
	Error         string          `json:"error"`
	FailedAt      time.Time       `json:"failed_at"`
	Source        string          `json:"source"`
}

// DeadLetterTopic returns the dead-letter topic for topic
func DeadLetterTopic(topic string) string {
	return topic + DeadLetterSuffix
}

// DeadLetterWriter parks undeliverable records on "<topic>.dlq"
type DeadLetterWriter struct {
	publisher JSONPublisher
	source    string
}

// NewDeadLetterWriter creates a DeadLetterWriter
func NewDeadLetterWriter(publisher JSONPublisher, source string) *DeadLetterWriter {
	return &DeadLetterWriter{publisher: publisher, source: source}
}

// Write publishes msg to the dead-letter topic of msg.OriginalTopic
func (w *DeadLetterWriter) Write(ctx context.Context, msg *DeadLetter) error {
	if msg == nil {
		return fmt.Errorf("dead letter cannot be nil")
	}
	if msg.FailedAt.IsZero() {
		msg.FailedAt = time.Now().UTC()
	}
	msg.Source = w.source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.OriginalTopic,
		"error":          msg.Error,
		"source":         w.source,
	}

	return w.publisher.ProduceJSON(ctx, DeadLetterTopic(msg.OriginalTopic), msg.OriginalKey, msg, headers)
}
