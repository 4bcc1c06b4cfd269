package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/LeskaProgrammer/KPO/internal/config"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
)

const (
	headerChangeSetID   = "change-set-id"
	headerCorrelationID = "correlation-id"
)

// JournalProducer appends committed change sets to the journal topic. It
// satisfies ledger.UnitOfWork. The writer is asynchronous; delivery
// failures surface in the completion callback only.
type JournalProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// Creates the journal producer and ensures the topic exists
func NewJournalProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*JournalProducer, error) {
	if cfg.JournalTopic == "" {
		return nil, fmt.Errorf("kafka journal topic is not configured")
	}
	logger = logger.With("component", "journal_producer", "topic", cfg.JournalTopic)

	if err := ensureTopic(cfg, cfg.JournalTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure journal topic %s exists: %w", cfg.JournalTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.JournalTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write change sets asynchronously", "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote change sets asynchronously", "count", len(messages))
			}
		},
	}

	return &JournalProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.JournalTopic,
	}, nil
}

// Commit publishes cs as one message keyed by its partition key, so all
// changes of an account stay ordered within a partition.
func (p *JournalProducer) Commit(ctx context.Context, cs journal.ChangeSet) {
	if cs.Empty() {
		return
	}

	payload, err := cs.Payload()
	if err != nil {
		p.logger.Error("Failed to encode change set", "change_set_id", cs.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(cs.PartitionKey()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: headerChangeSetID, Value: []byte(cs.ID)},
			{Key: headerCorrelationID, Value: []byte(cs.CorrelationID)},
		},
	}

	// persisted changes are published even after the request context is done
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Error("Failed to publish change set",
			"change_set_id", cs.ID,
			"correlation_id", cs.CorrelationID,
			"error", err,
		)
		return
	}

	p.logger.Debug("Published change set",
		"change_set_id", cs.ID,
		"key", string(msg.Key),
		"changes", len(cs.Changes),
	)
}

func (p *JournalProducer) Close() error {
	p.logger.Info("Closing journal Kafka producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close journal kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
