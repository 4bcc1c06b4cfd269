package ledger

import (
	"context"
	"log/slog"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Catalog manages accounts and categories
type Catalog struct {
	stores  Stores
	ids     IDGenerator
	journal committer
	logger  *slog.Logger
}

func NewCatalog(logger *slog.Logger, stores Stores, clock Clock, ids IDGenerator, uow UnitOfWork) *Catalog {
	return &Catalog{
		stores:  stores,
		ids:     ids,
		journal: newCommitter(uow, clock, ids),
		logger:  logger.With("component", "ledger_catalog"),
	}
}

func (c *Catalog) CreateAccount(ctx context.Context, name string) (*account.Account, error) {
	acc, err := account.NewAccount(c.ids.NewID(), name)
	if err != nil {
		return nil, err
	}

	err = c.stores.Accounts.Write(func(tx *store.Tx[*account.Account]) error {
		if err := tx.Add(ctx, acc); err != nil {
			return err
		}
		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeAccountCreated, acc, nil))
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Account created", "account_id", acc.ID)
	return acc, nil
}

func (c *Catalog) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	return getAccount(ctx, c.stores.Accounts, id)
}

func (c *Catalog) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return c.stores.Accounts.GetAll(ctx)
}

func (c *Catalog) RenameAccount(ctx context.Context, id, name string) (*account.Account, error) {
	var renamed *account.Account
	err := c.stores.Accounts.Write(func(tx *store.Tx[*account.Account]) error {
		acc, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := acc.Rename(name); err != nil {
			return err
		}
		if err := tx.Update(ctx, acc); err != nil {
			return err
		}
		c.journal.commit(ctx, c.journal.accountChange(journal.ChangeAccountRenamed, acc, nil))
		renamed = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// DeleteAccount removes the account together with every operation referencing it
func (c *Catalog) DeleteAccount(ctx context.Context, id string) error {
	logger := c.logger.With("account_id", id)

	err := c.stores.Accounts.Write(func(accounts *store.Tx[*account.Account]) error {
		return c.stores.Operations.Write(func(operations *store.Tx[*operation.Operation]) error {
			acc, err := getAccount(ctx, accounts, id)
			if err != nil {
				return err
			}
			ops, err := OperationsByAccount(ctx, operations, id)
			if err != nil {
				return err
			}

			var removed []*operation.Operation
			for _, op := range ops {
				if err := operations.Remove(ctx, op.ID); err != nil {
					c.restore(ctx, logger, operations, removed)
					return err
				}
				removed = append(removed, op)
			}
			if err := accounts.Remove(ctx, id); err != nil {
				c.restore(ctx, logger, operations, removed)
				return err
			}

			changes := make([]journal.Change, 0, len(ops)+1)
			for _, op := range ops {
				changes = append(changes, journal.Change{
					Kind:        journal.ChangeOperationDeleted,
					AccountID:   id,
					OperationID: op.ID,
					CategoryID:  op.CategoryID,
					At:          c.journal.clock.Now(),
				})
			}
			changes = append(changes, journal.Change{Kind: journal.ChangeAccountDeleted, AccountID: acc.ID, At: c.journal.clock.Now()})
			c.journal.commit(ctx, changes...)

			logger.Info("Account deleted", "operations_removed", len(ops))
			return nil
		})
	})
	return err
}

func (c *Catalog) restore(ctx context.Context, logger *slog.Logger, operations *store.Tx[*operation.Operation], removed []*operation.Operation) {
	failed := false
	for _, op := range removed {
		if err := operations.Add(ctx, op); err != nil {
			logger.Error("Failed to restore operation", "operation_id", op.ID, "error", err)
			failed = true
		}
	}
	if failed {
		operations.Invalidate()
	}
}

func (c *Catalog) CreateCategory(ctx context.Context, name string, typ shared.OperationType) (*category.Category, error) {
	cat, err := category.NewCategory(c.ids.NewID(), name, typ)
	if err != nil {
		return nil, err
	}

	err = c.stores.Categories.Write(func(tx *store.Tx[*category.Category]) error {
		if err := tx.Add(ctx, cat); err != nil {
			return err
		}
		c.journal.commit(ctx, c.categoryChange(journal.ChangeCategoryCreated, cat.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Category created", "category_id", cat.ID, "type", cat.Type)
	return cat, nil
}

func (c *Catalog) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	return getCategory(ctx, c.stores.Categories, id)
}

func (c *Catalog) ListCategories(ctx context.Context) ([]*category.Category, error) {
	return c.stores.Categories.GetAll(ctx)
}

func (c *Catalog) RenameCategory(ctx context.Context, id, name string) (*category.Category, error) {
	var renamed *category.Category
	err := c.stores.Categories.Write(func(tx *store.Tx[*category.Category]) error {
		cat, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := cat.Rename(name); err != nil {
			return err
		}
		if err := tx.Update(ctx, cat); err != nil {
			return err
		}
		c.journal.commit(ctx, c.categoryChange(journal.ChangeCategoryUpdated, cat.ID))
		renamed = cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// ChangeCategoryType is rejected while operations of the old type reference the category
func (c *Catalog) ChangeCategoryType(ctx context.Context, id string, typ shared.OperationType) (*category.Category, error) {
	var changed *category.Category
	err := c.withCategoryUsage(func(categories *store.Tx[*category.Category], operations store.Reader[*operation.Operation]) error {
		cat, err := getCategory(ctx, categories, id)
		if err != nil {
			return err
		}
		if err := cat.ChangeType(typ); err != nil {
			return err
		}

		refs, err := referencing(ctx, operations, id)
		if err != nil {
			return err
		}
		for _, op := range refs {
			if op.Type != typ {
				return shared.Invalid(shared.RuleCategoryType, "category %s is used by %s operation %s", id, op.Type, op.ID)
			}
		}

		if err := categories.Update(ctx, cat); err != nil {
			return err
		}
		c.journal.commit(ctx, c.categoryChange(journal.ChangeCategoryUpdated, cat.ID))
		changed = cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// DeleteCategory is rejected while any operation references the category
func (c *Catalog) DeleteCategory(ctx context.Context, id string) error {
	err := c.withCategoryUsage(func(categories *store.Tx[*category.Category], operations store.Reader[*operation.Operation]) error {
		if _, err := getCategory(ctx, categories, id); err != nil {
			return err
		}
		refs, err := referencing(ctx, operations, id)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return shared.Invalid(shared.RuleCategoryInUse, "category %s is used by %d operations", id, len(refs))
		}

		if err := categories.Remove(ctx, id); err != nil {
			return err
		}
		c.journal.commit(ctx, c.categoryChange(journal.ChangeCategoryDeleted, id))
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("Category deleted", "category_id", id)
	return nil
}

func (c *Catalog) withCategoryUsage(fn func(categories *store.Tx[*category.Category], operations store.Reader[*operation.Operation]) error) error {
	return c.stores.Categories.Write(func(categories *store.Tx[*category.Category]) error {
		return c.stores.Operations.Read(func(operations store.Reader[*operation.Operation]) error {
			return fn(categories, operations)
		})
	})
}

func (c *Catalog) categoryChange(kind journal.ChangeKind, id string) journal.Change {
	return journal.Change{Kind: kind, CategoryID: id, At: c.journal.clock.Now()}
}

func referencing(ctx context.Context, operations store.Reader[*operation.Operation], categoryID string) ([]*operation.Operation, error) {
	all, err := operations.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var refs []*operation.Operation
	for _, op := range all {
		if op.CategoryID == categoryID {
			refs = append(refs, op)
		}
	}
	return refs, nil
}
