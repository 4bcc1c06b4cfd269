// Package processor applies ledger commands consumed from Kafka.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/platform/messaging/producers"
)

// CommandHandler turns Kafka messages into commands. A nil return lets the
// consumer commit the message; an error makes it retry the same message.
type CommandHandler struct {
	service ProcessingService
	dlq     producers.DeadLetterPublisher
	logger  *slog.Logger
}

func NewCommandHandler(logger *slog.Logger, service ProcessingService, dlq producers.DeadLetterPublisher) *CommandHandler {
	return &CommandHandler{
		service: service,
		dlq:     dlq,
		logger:  logger.With("component", "command_handler"),
	}
}

func (h *CommandHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	key := string(msg.Key)

	cmd, err := DecodeCommand(msg.Value)
	if err != nil {
		h.logger.Error("Failed to decode command", "message_key", key, "error", err)
		return h.deadLetter(ctx, key, msg.Value, err)
	}

	logger := h.logger.With("command_id", cmd.ID, "type", cmd.Type, "correlation_id", cmd.CorrelationID)
	logger.Debug("Received command")

	if err := h.service.Process(ctx, cmd); err != nil {
		if isBusinessError(err) {
			logger.Warn("Command rejected", "error", err)
			return nil
		}
		logger.Error("Failed to process command", "error", err)
		return fmt.Errorf("processing command %s failed: %w", cmd.ID, err)
	}
	return nil
}

func (h *CommandHandler) deadLetter(ctx context.Context, key string, value []byte, cause error) error {
	if h.dlq == nil {
		return fmt.Errorf("undecodable command and no DLQ configured: %w", cause)
	}

	reason := fmt.Sprintf("undecodable command: %v", cause)
	if err := h.dlq.PublishToDLQ(ctx, key, value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ after decode error",
			"dlq_error", err,
			"original_error", cause,
			"message_key", key,
		)
		return fmt.Errorf("failed to dead-letter command: %w", errors.Join(cause, err))
	}
	return nil
}

// isBusinessError reports failures that will not change on redelivery
func isBusinessError(err error) bool {
	return errors.Is(err, shared.ErrNotFound{}) ||
		errors.Is(err, shared.ErrValidationFailed{}) ||
		errors.Is(err, shared.ErrDuplicateKey{})
}
