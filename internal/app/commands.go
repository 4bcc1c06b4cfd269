package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LeskaProgrammer/KPO/internal/config"
	"github.com/LeskaProgrammer/KPO/internal/platform/messaging/consumers"
	"github.com/LeskaProgrammer/KPO/internal/platform/messaging/producers"
	"github.com/LeskaProgrammer/KPO/internal/processor"
)

// CommandPipeline feeds batches from the command topic into the coordinator.
// Commands with different keys run in parallel on the worker pool.
type CommandPipeline struct {
	consumer *consumers.KafkaConsumer
	pool     *processor.WorkerPoolService
	dlq      *producers.DLQProducer
	handler  *processor.CommandHandler
	logger   *slog.Logger
}

func NewCommandPipeline(ctx context.Context, logger *slog.Logger, cfg *config.Config, l processor.Ledger) (*CommandPipeline, error) {
	dlq, err := producers.NewDLQProducer(ctx, logger, &cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DLQ producer: %w", err)
	}

	pool, err := processor.NewWorkerPoolService(logger, cfg.WorkerPool.Size)
	if err != nil {
		_ = dlq.Close()
		return nil, err
	}

	return &CommandPipeline{
		consumer: consumers.NewKafkaConsumer(ctx, logger, &cfg.Kafka, pool),
		pool:     pool,
		dlq:      dlq,
		handler:  processor.NewCommandHandler(logger, processor.NewLedgerService(logger, l), dlq),
		logger:   logger,
	}, nil
}

// Start subscribes to the command topic; consumption stops when ctx is done
func (p *CommandPipeline) Start(ctx context.Context) error {
	return p.consumer.Subscribe(ctx, p.handler.HandleMessage)
}

// Done is closed once the consumer has stopped
func (p *CommandPipeline) Done() <-chan struct{} {
	return p.consumer.Done()
}

func (p *CommandPipeline) Close() error {
	p.pool.Shutdown()
	return errors.Join(p.consumer.Close(), p.dlq.Close())
}
