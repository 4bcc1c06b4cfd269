package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/rules"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// RecordRequest carries the fields of a new operation
type RecordRequest struct {
	AccountID   string
	CategoryID  string
	Type        shared.OperationType
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// OperationPatch lists the fields to change; nil fields are left alone.
// The account of an operation cannot be changed. Type and category are
// checked as the pair they end up as, so flipping Type also needs a
// CategoryID of the new type unless the current category already has it.
type OperationPatch struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
	CategoryID  *string
	Type        *shared.OperationType
}

// Coordinator applies operation changes to account balances incrementally.
// Every method validates before its first write, and holds the account and
// operation write locks until the change set is committed.
type Coordinator struct {
	stores  Stores
	rules   rules.RuleSet
	clock   Clock
	ids     IDGenerator
	journal committer
	logger  *slog.Logger
}

func NewCoordinator(logger *slog.Logger, stores Stores, ruleSet rules.RuleSet, clock Clock, ids IDGenerator, uow UnitOfWork) *Coordinator {
	return &Coordinator{
		stores:  stores,
		rules:   ruleSet,
		clock:   clock,
		ids:     ids,
		journal: newCommitter(uow, clock, ids),
		logger:  logger.With("component", "ledger_coordinator"),
	}
}

type ledgerTx struct {
	accounts   *store.Tx[*account.Account]
	categories store.Reader[*category.Category]
	operations *store.Tx[*operation.Operation]
}

func (c *Coordinator) withLedger(fn func(tx *ledgerTx) error) error {
	return c.stores.Accounts.Write(func(accounts *store.Tx[*account.Account]) error {
		return c.stores.Categories.Read(func(categories store.Reader[*category.Category]) error {
			return c.stores.Operations.Write(func(operations *store.Tx[*operation.Operation]) error {
				return fn(&ledgerTx{accounts: accounts, categories: categories, operations: operations})
			})
		})
	})
}

// Record creates an operation and applies its signed amount to the account
func (c *Coordinator) Record(ctx context.Context, req RecordRequest) (*operation.Operation, error) {
	logger := c.logger.With("account_id", req.AccountID, "correlation_id", journal.CorrelationID(ctx))

	var recorded *operation.Operation
	err := c.withLedger(func(tx *ledgerTx) error {
		acc, err := getAccount(ctx, tx.accounts, req.AccountID)
		if err != nil {
			return err
		}
		cat, err := getCategory(ctx, tx.categories, req.CategoryID)
		if err != nil {
			return err
		}
		if err := c.checkAmount(req.Amount); err != nil {
			return err
		}
		if err := c.checkDate(req.Date); err != nil {
			return err
		}
		if err := c.checkCategory(req.Type, cat); err != nil {
			return err
		}

		op, err := operation.NewOperation(c.ids.NewID(), acc.ID, cat.ID, req.Type, req.Amount, req.Date, req.Description)
		if err != nil {
			return err
		}

		if err := tx.operations.Add(ctx, op); err != nil {
			return err
		}
		acc.ApplyDelta(op.SignedAmount())
		if err := tx.accounts.Update(ctx, acc); err != nil {
			c.undo(logger, tx, "remove recorded operation", func() error { return tx.operations.Remove(ctx, op.ID) })
			return err
		}

		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeOperationRecorded, acc, op))
		recorded = op
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Operation recorded", "operation_id", recorded.ID, "type", recorded.Type, "amount", recorded.Amount.String())
	return recorded, nil
}

// Update edits an operation: the old signed amount is reverted, the patch is
// applied with validation, and the new signed amount is applied.
func (c *Coordinator) Update(ctx context.Context, operationID string, patch OperationPatch) (*operation.Operation, error) {
	logger := c.logger.With("operation_id", operationID, "correlation_id", journal.CorrelationID(ctx))

	var updated *operation.Operation
	err := c.withLedger(func(tx *ledgerTx) error {
		op, err := getOperation(ctx, tx.operations, operationID)
		if err != nil {
			return err
		}
		acc, err := getAccount(ctx, tx.accounts, op.AccountID)
		if err != nil {
			return err
		}
		original := op.Clone()

		acc.ApplyDelta(op.SignedAmount().Neg())
		if err := c.applyPatch(ctx, tx, op, patch); err != nil {
			return err
		}
		acc.ApplyDelta(op.SignedAmount())

		if err := tx.operations.Update(ctx, op); err != nil {
			return err
		}
		if err := tx.accounts.Update(ctx, acc); err != nil {
			c.undo(logger, tx, "restore operation", func() error { return tx.operations.Update(ctx, original) })
			return err
		}

		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeOperationUpdated, acc, op))
		updated = op
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Operation updated", "account_id", updated.AccountID, "type", updated.Type, "amount", updated.Amount.String())
	return updated, nil
}

// applyPatch mutates op in place. It never touches the stores, so a
// validation failure leaves nothing to roll back.
func (c *Coordinator) applyPatch(ctx context.Context, tx *ledgerTx, op *operation.Operation, patch OperationPatch) error {
	if patch.Amount != nil {
		if err := c.checkAmount(*patch.Amount); err != nil {
			return err
		}
		if err := op.SetAmount(*patch.Amount); err != nil {
			return err
		}
	}
	if patch.Date != nil {
		if err := c.checkDate(*patch.Date); err != nil {
			return err
		}
		op.SetDate(*patch.Date)
	}
	if patch.Description != nil {
		op.SetDescription(*patch.Description)
	}

	if patch.CategoryID == nil && patch.Type == nil {
		return nil
	}

	// Category and type are checked as the pair they end up as, so both can
	// be flipped in one patch.
	categoryID := op.CategoryID
	if patch.CategoryID != nil {
		categoryID = *patch.CategoryID
	}
	typ := op.Type
	if patch.Type != nil {
		typ = *patch.Type
	}

	cat, err := getCategory(ctx, tx.categories, categoryID)
	if err != nil {
		return err
	}
	if err := c.checkCategory(typ, cat); err != nil {
		return err
	}
	if err := op.SetType(typ); err != nil {
		return err
	}
	return op.SetCategory(cat.ID)
}

// Delete removes an operation and reverts its effect on the balance
func (c *Coordinator) Delete(ctx context.Context, operationID string) error {
	logger := c.logger.With("operation_id", operationID, "correlation_id", journal.CorrelationID(ctx))

	err := c.withLedger(func(tx *ledgerTx) error {
		op, err := getOperation(ctx, tx.operations, operationID)
		if err != nil {
			return err
		}
		acc, err := getAccount(ctx, tx.accounts, op.AccountID)
		if err != nil {
			return err
		}

		acc.ApplyDelta(op.SignedAmount().Neg())
		if err := tx.operations.Remove(ctx, op.ID); err != nil {
			return err
		}
		if err := tx.accounts.Update(ctx, acc); err != nil {
			c.undo(logger, tx, "re-add deleted operation", func() error { return tx.operations.Add(ctx, op) })
			return err
		}

		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeOperationDeleted, acc, op))
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Operation deleted")
	return nil
}

// Recalculate recomputes the balance from the account's operations. It is
// idempotent and restores the balance invariant after any drift.
func (c *Coordinator) Recalculate(ctx context.Context, accountID string) (*account.Account, error) {
	var result *account.Account
	err := c.withLedger(func(tx *ledgerTx) error {
		acc, err := getAccount(ctx, tx.accounts, accountID)
		if err != nil {
			return err
		}
		ops, err := OperationsByAccount(ctx, tx.operations, acc.ID)
		if err != nil {
			return err
		}

		previous := acc.Balance
		acc.SetBalance(sumSigned(ops))
		if err := tx.accounts.Update(ctx, acc); err != nil {
			return err
		}

		if !previous.Equal(acc.Balance) {
			c.logger.Warn("Balance drift corrected",
				"account_id", acc.ID,
				"previous", previous.String(),
				"recalculated", acc.Balance.String())
		}
		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeBalanceRecalculated, acc, nil))
		result = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Coordinator) checkAmount(amount decimal.Decimal) error {
	if !c.rules.AmountValid(amount) {
		return shared.Invalid(shared.RuleAmountNonNegative, "amount %s is negative", amount)
	}
	return nil
}

func (c *Coordinator) checkDate(date time.Time) error {
	if !c.rules.DateValid(date, c.clock.Now()) {
		return shared.Invalid(shared.RuleDateWindow, "date %s is outside the allowed window", date.Format(time.RFC3339))
	}
	return nil
}

func (c *Coordinator) checkCategory(typ shared.OperationType, cat *category.Category) error {
	if !typ.Valid() {
		return shared.Invalid(shared.RuleOperationType, "unknown operation type %q", typ)
	}
	if !c.rules.CategoryMatches(typ, cat.Type) {
		return shared.Invalid(shared.RuleCategoryType, "category %s is %s, operation is %s", cat.ID, cat.Type, typ)
	}
	return nil
}

// undo runs a compensating write after a later step of the same call failed.
// If that fails too the caches are dropped: the backing stores may hold
// either version now and only they can tell.
func (c *Coordinator) undo(logger *slog.Logger, tx *ledgerTx, what string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error("Failed to "+what+", ledger needs recalculation", "error", err)
		tx.operations.Invalidate()
		tx.accounts.Invalidate()
	}
}

func sumSigned(ops []*operation.Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(op.SignedAmount())
	}
	return total
}
