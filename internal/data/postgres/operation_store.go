package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/platform/persistence"
)

const (
	insertOperationQuery = `
		INSERT INTO operations (id, type, account_id, category_id, amount, occurred_at, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	upsertOperationQuery = `
		INSERT INTO operations (id, type, account_id, category_id, amount, occurred_at, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			category_id = EXCLUDED.category_id,
			amount = EXCLUDED.amount,
			occurred_at = EXCLUDED.occurred_at,
			description = EXCLUDED.description
	`
	selectOperationQuery = `
		SELECT id, type, account_id, category_id, amount::text, occurred_at, description
		FROM operations
		WHERE id = $1
	`
	selectOperationsQuery = `
		SELECT id, type, account_id, category_id, amount::text, occurred_at, description
		FROM operations
		ORDER BY id
	`
	deleteOperationQuery = `DELETE FROM operations WHERE id = $1`
)

// OperationStore persists operations in the operations table. account_id is
// never part of the upsert since an operation cannot move between accounts.
type OperationStore struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOperationStore(logger *slog.Logger, db *persistence.PostgresDB) *OperationStore {
	return &OperationStore{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (s *OperationStore) Get(ctx context.Context, id string) (*operation.Operation, bool, error) {
	op, err := scanOperation(s.querier.QueryRow(ctx, selectOperationQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		s.logger.Error("Failed to get operation", "id", id, "error", err)
		return nil, false, fmt.Errorf("failed to get operation: %w", err)
	}
	return op, true, nil
}

func (s *OperationStore) GetAll(ctx context.Context) ([]*operation.Operation, error) {
	rows, err := s.querier.Query(ctx, selectOperationsQuery)
	if err != nil {
		s.logger.Error("Failed to list operations", "error", err)
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var operations []*operation.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		operations = append(operations, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}
	return operations, nil
}

func (s *OperationStore) Add(ctx context.Context, op *operation.Operation) error {
	_, err := s.querier.Exec(ctx, insertOperationQuery, operationArgs(op)...)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateKey{Entity: shared.EntityOperation, ID: op.ID}
		}
		s.logger.Error("Failed to insert operation", "id", op.ID, "error", err)
		return fmt.Errorf("failed to insert operation: %w", err)
	}
	return nil
}

func (s *OperationStore) Update(ctx context.Context, op *operation.Operation) error {
	if _, err := s.querier.Exec(ctx, upsertOperationQuery, operationArgs(op)...); err != nil {
		s.logger.Error("Failed to update operation", "id", op.ID, "error", err)
		return fmt.Errorf("failed to update operation: %w", err)
	}
	return nil
}

func (s *OperationStore) Remove(ctx context.Context, id string) error {
	if _, err := s.querier.Exec(ctx, deleteOperationQuery, id); err != nil {
		s.logger.Error("Failed to delete operation", "id", id, "error", err)
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	return nil
}

func operationArgs(op *operation.Operation) []any {
	return []any{op.ID, string(op.Type), op.AccountID, op.CategoryID, op.Amount, op.Date, op.Description}
}

func scanOperation(row pgx.Row) (*operation.Operation, error) {
	var (
		op     operation.Operation
		typ    string
		amount string
	)
	if err := row.Scan(&op.ID, &typ, &op.AccountID, &op.CategoryID, &amount, &op.Date, &op.Description); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q for operation %s: %w", amount, op.ID, err)
	}
	op.Type = shared.OperationType(typ)
	op.Amount = parsed
	return &op, nil
}
