package consumers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/LeskaProgrammer/KPO/internal/config"
)

const (
	fetchRetryDelay  = time.Second
	defaultBatchSize = 100
	defaultBatchWait = 100 * time.Millisecond
)

type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Done() <-chan struct{}
	Close() error
}

// MessageReader is the part of kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TaskRunner runs tasks concurrently and returns once all of them finished
type TaskRunner interface {
	RunAll(tasks []func() error) error
}

type serialRunner struct{}

func (serialRunner) RunAll(tasks []func() error) error {
	var errs []error
	for _, task := range tasks {
		errs = append(errs, task())
	}
	return errors.Join(errs...)
}

// KafkaConsumer reads ledger commands from one topic within a consumer
// group. Messages are fetched in batches; each key's messages run in order
// on one task while different keys run in parallel on the TaskRunner. The
// batch is committed only after every message in it was handled.
type KafkaConsumer struct {
	reader    MessageReader
	runner    TaskRunner
	retry     func() backoff.BackOff
	batchSize int
	batchWait time.Duration
	topic     string
	group     string
	done      chan struct{}
	logger    *slog.Logger
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, runner TaskRunner) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.BrokerList(),
		Topic:       cfg.CommandTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})
	c := newKafkaConsumer(logger, reader, runner, cfg.CommandTopic, cfg.ConsumerGroup)
	if cfg.BatchSize > 0 {
		c.batchSize = cfg.BatchSize
	}
	if cfg.BatchWait > 0 {
		c.batchWait = cfg.BatchWait
	}
	return c
}

func newKafkaConsumer(logger *slog.Logger, reader MessageReader, runner TaskRunner, topic, group string) *KafkaConsumer {
	if runner == nil {
		runner = serialRunner{}
	}
	return &KafkaConsumer{
		reader:    reader,
		runner:    runner,
		retry:     retryPolicy,
		batchSize: defaultBatchSize,
		batchWait: defaultBatchWait,
		topic:     topic,
		group:     group,
		done:      make(chan struct{}),
		logger:    logger.With("component", "kafka_consumer", "topic", topic, "group_id", group),
	}
}

// retryPolicy retries a failing message until it succeeds or the consumer
// stops, so a later commit never skips it
func retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Subscribe starts the fetch loop in the background. It stops when ctx is
// cancelled; Done is closed once it has.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic", "batch_size", c.batchSize, "batch_wait", c.batchWait.String())
	go func() {
		defer close(c.done)
		c.consume(ctx, handler)
	}()
	return nil
}

func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		batch, err := c.fetchBatch(ctx)
		if err != nil {
			c.logger.Info("Stopping consumer", "reason", err)
			return
		}

		if err := c.process(ctx, batch, handler); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping consumer, uncommitted batch will be redelivered", "batch_size", len(batch))
				return
			}
			c.logger.Error("Stopping consumer, batch left uncommitted", "batch_size", len(batch), "error", err)
			return
		}

		if err := c.reader.CommitMessages(ctx, batch...); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping consumer before commit", "batch_size", len(batch))
				return
			}
			// The next successful commit covers these offsets
			c.logger.Error("Failed to commit batch after successful processing", "batch_size", len(batch), "error", err)
			continue
		}
		c.logger.Debug("Batch committed", "batch_size", len(batch))
	}
}

// fetchBatch blocks for the first message, then collects more until the
// batch is full or batchWait has passed.
func (c *KafkaConsumer) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.fetchFirst(ctx)
	if err != nil {
		return nil, err
	}
	batch := []kafka.Message{first}

	waitCtx, cancel := context.WithTimeout(ctx, c.batchWait)
	defer cancel()
	for len(batch) < c.batchSize {
		msg, err := c.reader.FetchMessage(waitCtx)
		if err != nil {
			break
		}
		batch = append(batch, msg)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *KafkaConsumer) fetchFirst(ctx context.Context) (kafka.Message, error) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err == nil {
			return msg, nil
		}
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return kafka.Message{}, err
		}

		c.logger.Error("Failed to fetch message from Kafka", "error", err)
		select {
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		case <-time.After(fetchRetryDelay):
		}
	}
}

// process handles the batch with one task per message key
func (c *KafkaConsumer) process(ctx context.Context, batch []kafka.Message, handler MessageHandler) error {
	groups := groupByKey(batch)
	tasks := make([]func() error, 0, len(groups))
	for _, msgs := range groups {
		tasks = append(tasks, func() error {
			for _, msg := range msgs {
				if err := c.handle(ctx, handler, msg); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return c.runner.RunAll(tasks)
}

func (c *KafkaConsumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) error {
	logger := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	logger.Debug("Received message from Kafka")

	return backoff.RetryNotify(
		func() error { return handler(ctx, msg) },
		backoff.WithContext(c.retry(), ctx),
		func(err error, wait time.Duration) {
			logger.Error("Failed to process message, retrying", "error", err, "retry_in", wait.String())
		},
	)
}

// groupByKey splits the batch by message key, keeping fetch order within
// each group
func groupByKey(batch []kafka.Message) [][]kafka.Message {
	index := make(map[string]int)
	var groups [][]kafka.Message
	for _, msg := range batch {
		key := string(msg.Key)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], msg)
	}
	return groups
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
