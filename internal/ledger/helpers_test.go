package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/data/memory"
	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/rules"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%03d", g.next)
}

type recordingUnitOfWork struct {
	mu   sync.Mutex
	sets []journal.ChangeSet
}

func (u *recordingUnitOfWork) Commit(_ context.Context, cs journal.ChangeSet) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sets = append(u.sets, cs)
}

func (u *recordingUnitOfWork) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.sets)
}

func (u *recordingUnitOfWork) last() journal.ChangeSet {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sets[len(u.sets)-1]
}

// flakyStore fails Update while updateErr is set and Remove while removeErr
// is set. A failing Remove still deletes when removeApplied is set, like a
// write whose acknowledgement was lost.
type flakyStore[T store.Entity[T]] struct {
	*memory.Store[T]
	updateErr     error
	removeErr     error
	removeApplied bool
}

func (f *flakyStore[T]) Update(ctx context.Context, entity T) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Store.Update(ctx, entity)
}

func (f *flakyStore[T]) Remove(ctx context.Context, id string) error {
	if f.removeErr == nil {
		return f.Store.Remove(ctx, id)
	}
	if f.removeApplied {
		_ = f.Store.Remove(ctx, id)
	}
	return f.removeErr
}

type fixture struct {
	ctx context.Context

	accountsBacking   *flakyStore[*account.Account]
	operationsBacking *flakyStore[*operation.Operation]
	stores            Stores
	uow               *recordingUnitOfWork

	coordinator *Coordinator
	catalog     *Catalog
	reports     *Reports
	archive     *Archive

	account *account.Account
	salary  *category.Category
	food    *category.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f := &fixture{
		ctx:               context.Background(),
		accountsBacking:   &flakyStore[*account.Account]{Store: memory.NewStore[*account.Account](shared.EntityAccount)},
		operationsBacking: &flakyStore[*operation.Operation]{Store: memory.NewStore[*operation.Operation](shared.EntityOperation)},
		uow:               &recordingUnitOfWork{},
	}
	f.stores = Stores{
		Accounts:   store.NewAggregateStore[*account.Account](logger, shared.EntityAccount, f.accountsBacking),
		Categories: store.NewAggregateStore[*category.Category](logger, shared.EntityCategory, memory.NewStore[*category.Category](shared.EntityCategory)),
		Operations: store.NewAggregateStore[*operation.Operation](logger, shared.EntityOperation, f.operationsBacking),
	}

	clock := fixedClock{now: testNow}
	ids := &sequentialIDs{}
	ruleSet := rules.New(rules.DefaultFutureTolerance)

	f.coordinator = NewCoordinator(logger, f.stores, ruleSet, clock, ids, f.uow)
	f.catalog = NewCatalog(logger, f.stores, clock, ids, f.uow)
	f.reports = NewReports(f.stores, analytics.NewAggregator())
	f.archive = NewArchive(logger, f.stores, ruleSet, clock, ids, f.uow)

	var err error
	f.account, err = f.catalog.CreateAccount(f.ctx, "Main")
	require.NoError(t, err)
	f.salary, err = f.catalog.CreateCategory(f.ctx, "Salary", shared.OperationTypeIncome)
	require.NoError(t, err)
	f.food, err = f.catalog.CreateCategory(f.ctx, "Food", shared.OperationTypeExpense)
	require.NoError(t, err)
	return f
}

func (f *fixture) record(t *testing.T, cat *category.Category, amount int64) *operation.Operation {
	t.Helper()
	op, err := f.coordinator.Record(f.ctx, RecordRequest{
		AccountID:  f.account.ID,
		CategoryID: cat.ID,
		Type:       cat.Type,
		Amount:     decimal.NewFromInt(amount),
		Date:       testNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	return op
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	acc, err := f.catalog.GetAccount(f.ctx, f.account.ID)
	require.NoError(t, err)
	return acc.Balance
}

// assertInvariant checks balance == signed sum of the account's operations
func (f *fixture) assertInvariant(t *testing.T) {
	t.Helper()
	ops, err := OperationsByAccount(f.ctx, f.stores.Operations, f.account.ID)
	require.NoError(t, err)
	require.True(t, sumSigned(ops).Equal(f.balance(t)), "balance %s, operations sum %s", f.balance(t), sumSigned(ops))
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func ptr[T any](v T) *T { return &v }
