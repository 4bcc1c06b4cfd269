package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// ProcessingService executes decoded commands
type ProcessingService interface {
	Process(ctx context.Context, cmd Command) error
}

// Ledger is the part of ledger.Coordinator commands are applied to
type Ledger interface {
	Record(ctx context.Context, req ledger.RecordRequest) (*operation.Operation, error)
	Update(ctx context.Context, operationID string, patch ledger.OperationPatch) (*operation.Operation, error)
	Delete(ctx context.Context, operationID string) error
	Recalculate(ctx context.Context, accountID string) (*account.Account, error)
}

// LedgerService dispatches commands to the coordinator
type LedgerService struct {
	ledger Ledger
	logger *slog.Logger
}

func NewLedgerService(logger *slog.Logger, l Ledger) *LedgerService {
	return &LedgerService{
		ledger: l,
		logger: logger.With("component", "command_service"),
	}
}

func (s *LedgerService) Process(ctx context.Context, cmd Command) error {
	ctx = journal.WithCorrelationID(ctx, cmd.CorrelationID)
	logger := s.logger.With("command_id", cmd.ID, "type", cmd.Type, "correlation_id", cmd.CorrelationID)

	switch cmd.Type {
	case CommandRecord:
		op, err := s.ledger.Record(ctx, cmd.Record)
		if err != nil {
			return err
		}
		logger.Info("Operation recorded", "operation_id", op.ID, "account_id", op.AccountID)
	case CommandUpdate:
		op, err := s.ledger.Update(ctx, cmd.OperationID, cmd.Patch)
		if err != nil {
			return err
		}
		logger.Info("Operation updated", "operation_id", op.ID)
	case CommandDelete:
		if err := s.ledger.Delete(ctx, cmd.OperationID); err != nil {
			return err
		}
		logger.Info("Operation deleted", "operation_id", cmd.OperationID)
	case CommandRecalculate:
		acc, err := s.ledger.Recalculate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}
		logger.Info("Balance recalculated", "account_id", acc.ID, "balance", acc.Balance.String())
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
	return nil
}
