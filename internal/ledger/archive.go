package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/rules"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Snapshot is a consistent copy of the whole ledger
type Snapshot struct {
	Accounts   []*account.Account
	Categories []*category.Category
	Operations []*operation.Operation
}

// ImportResult counts what an import added
type ImportResult struct {
	Accounts     int `json:"accounts"`
	Categories   int `json:"categories"`
	Operations   int `json:"operations"`
	Recalculated int `json:"recalculated"`
}

// Archive takes ledger snapshots and loads them back
type Archive struct {
	stores  Stores
	rules   rules.RuleSet
	clock   Clock
	journal committer
	logger  *slog.Logger
}

func NewArchive(logger *slog.Logger, stores Stores, ruleSet rules.RuleSet, clock Clock, ids IDGenerator, uow UnitOfWork) *Archive {
	return &Archive{
		stores:  stores,
		rules:   ruleSet,
		clock:   clock,
		journal: newCommitter(uow, clock, ids),
		logger:  logger.With("component", "ledger_archive"),
	}
}

// Snapshot reads all three stores under their read locks
func (a *Archive) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := a.stores.Accounts.Read(func(accounts store.Reader[*account.Account]) error {
		return a.stores.Categories.Read(func(categories store.Reader[*category.Category]) error {
			return a.stores.Operations.Read(func(operations store.Reader[*operation.Operation]) error {
				var err error
				if snap.Accounts, err = accounts.GetAll(ctx); err != nil {
					return err
				}
				if snap.Categories, err = categories.GetAll(ctx); err != nil {
					return err
				}
				if snap.Operations, err = operations.GetAll(ctx); err != nil {
					return err
				}
				sortByDate(snap.Operations)
				return nil
			})
		})
	})
	return snap, err
}

// Import adds every entity of the snapshot and then recalculates the
// balance of each account it touched. Imported balances are ignored. The
// whole snapshot is validated before the first write.
func (a *Archive) Import(ctx context.Context, snap Snapshot) (ImportResult, error) {
	var result ImportResult
	err := a.stores.Accounts.Write(func(accounts *store.Tx[*account.Account]) error {
		return a.stores.Categories.Write(func(categories *store.Tx[*category.Category]) error {
			return a.stores.Operations.Write(func(operations *store.Tx[*operation.Operation]) error {
				if err := a.validate(ctx, snap, accounts, categories, operations); err != nil {
					return err
				}

				touched := make(map[string]struct{})
				for _, acc := range snap.Accounts {
					acc := acc.Clone()
					acc.SetBalance(decimal.Zero)
					if err := accounts.Add(ctx, acc); err != nil {
						return err
					}
					touched[acc.ID] = struct{}{}
					result.Accounts++
				}
				for _, cat := range snap.Categories {
					if err := categories.Add(ctx, cat); err != nil {
						return err
					}
					result.Categories++
				}
				for _, op := range snap.Operations {
					if err := operations.Add(ctx, op); err != nil {
						return err
					}
					touched[op.AccountID] = struct{}{}
					result.Operations++
				}

				var changes []journal.Change
				for id := range touched {
					acc, err := getAccount(ctx, accounts, id)
					if err != nil {
						return err
					}
					ops, err := OperationsByAccount(ctx, operations, id)
					if err != nil {
						return err
					}
					acc.SetBalance(sumSigned(ops))
					if err := accounts.Update(ctx, acc); err != nil {
						return err
					}
					changes = append(changes, a.journal.accountChange(journal.ChangeBalanceRecalculated, acc, nil))
					result.Recalculated++
				}
				a.journal.commit(ctx, changes...)
				return nil
			})
		})
	})
	if err != nil {
		a.logger.Error("Import failed", "error", err, "accounts_added", result.Accounts, "operations_added", result.Operations)
		return result, err
	}

	a.logger.Info("Import completed",
		"accounts", result.Accounts,
		"categories", result.Categories,
		"operations", result.Operations)
	return result, nil
}

func (a *Archive) validate(ctx context.Context, snap Snapshot, accounts store.Reader[*account.Account], categories store.Reader[*category.Category], operations store.Reader[*operation.Operation]) error {
	knownAccounts := make(map[string]struct{})
	for _, acc := range snap.Accounts {
		if _, err := account.NewAccount(acc.ID, acc.Name); err != nil {
			return err
		}
		if err := ensureAbsent(ctx, accounts, shared.EntityAccount, acc.ID, knownAccounts); err != nil {
			return err
		}
	}

	catTypes := make(map[string]shared.OperationType)
	seenCategories := make(map[string]struct{})
	for _, cat := range snap.Categories {
		if _, err := category.NewCategory(cat.ID, cat.Name, cat.Type); err != nil {
			return err
		}
		if err := ensureAbsent(ctx, categories, shared.EntityCategory, cat.ID, seenCategories); err != nil {
			return err
		}
		catTypes[cat.ID] = cat.Type
	}

	seenOperations := make(map[string]struct{})
	now := a.clock.Now()
	for _, op := range snap.Operations {
		if _, err := operation.NewOperation(op.ID, op.AccountID, op.CategoryID, op.Type, op.Amount, op.Date, op.Description); err != nil {
			return err
		}
		if err := ensureAbsent(ctx, operations, shared.EntityOperation, op.ID, seenOperations); err != nil {
			return err
		}
		if _, ok := knownAccounts[op.AccountID]; !ok {
			if _, err := getAccount(ctx, accounts, op.AccountID); err != nil {
				return err
			}
		}
		catType, ok := catTypes[op.CategoryID]
		if !ok {
			cat, err := getCategory(ctx, categories, op.CategoryID)
			if err != nil {
				return err
			}
			catType = cat.Type
		}
		if !a.rules.AmountValid(op.Amount) {
			return shared.Invalid(shared.RuleAmountNonNegative, "operation %s has negative amount", op.ID)
		}
		if !a.rules.DateValid(op.Date, now) {
			return shared.Invalid(shared.RuleDateWindow, "operation %s date is outside the allowed window", op.ID)
		}
		if !a.rules.CategoryMatches(op.Type, catType) {
			return shared.Invalid(shared.RuleCategoryType, "operation %s is %s but category %s is %s", op.ID, op.Type, op.CategoryID, catType)
		}
	}
	return nil
}

// ensureAbsent rejects ids that are stored already or repeated in the snapshot
func ensureAbsent[T store.Entity[T]](ctx context.Context, r store.Reader[T], entity, id string, seen map[string]struct{}) error {
	if _, dup := seen[id]; dup {
		return shared.ErrDuplicateKey{Entity: entity, ID: id}
	}
	seen[id] = struct{}{}

	_, exists, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrDuplicateKey{Entity: entity, ID: id}
	}
	return nil
}
