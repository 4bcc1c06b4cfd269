package ledger

import (
	"context"
	"time"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// UnitOfWork receives every change set after it has been persisted. Commit
// runs while the ledger locks are still held, so implementations must not
// block on slow I/O.
type UnitOfWork interface {
	Commit(ctx context.Context, changes journal.ChangeSet)
}

// NoopUnitOfWork discards change sets
type NoopUnitOfWork struct{}

func (NoopUnitOfWork) Commit(context.Context, journal.ChangeSet) {}

// Stores bundles the aggregate stores the ledger works on. Locks are always
// taken in field order: accounts, categories, operations.
type Stores struct {
	Accounts   *store.AggregateStore[*account.Account]
	Categories *store.AggregateStore[*category.Category]
	Operations *store.AggregateStore[*operation.Operation]
}

// Period bounds a query by operation date, inclusive. A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

type committer struct {
	uow   UnitOfWork
	clock Clock
	ids   IDGenerator
}

func newCommitter(uow UnitOfWork, clock Clock, ids IDGenerator) committer {
	if uow == nil {
		uow = NoopUnitOfWork{}
	}
	return committer{uow: uow, clock: clock, ids: ids}
}

func (c committer) commit(ctx context.Context, changes ...journal.Change) {
	if len(changes) == 0 {
		return
	}
	c.uow.Commit(ctx, journal.ChangeSet{
		ID:            c.ids.NewID(),
		CorrelationID: journal.CorrelationID(ctx),
		Changes:       changes,
		CommittedAt:   c.clock.Now(),
	})
}

func (c committer) accountChange(kind journal.ChangeKind, acc *account.Account, op *operation.Operation) journal.Change {
	balance := acc.Balance
	ch := journal.Change{
		Kind:      kind,
		AccountID: acc.ID,
		Balance:   &balance,
		At:        c.clock.Now(),
	}
	if op != nil {
		ch.OperationID = op.ID
		ch.CategoryID = op.CategoryID
		ch.Operation = op.Clone()
	}
	return ch
}
