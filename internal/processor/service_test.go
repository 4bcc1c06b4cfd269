package processor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Record(ctx context.Context, req ledger.RecordRequest) (*operation.Operation, error) {
	args := m.Called(ctx, req)
	op, _ := args.Get(0).(*operation.Operation)
	return op, args.Error(1)
}

func (m *MockLedger) Update(ctx context.Context, operationID string, patch ledger.OperationPatch) (*operation.Operation, error) {
	args := m.Called(ctx, operationID, patch)
	op, _ := args.Get(0).(*operation.Operation)
	return op, args.Error(1)
}

func (m *MockLedger) Delete(ctx context.Context, operationID string) error {
	return m.Called(ctx, operationID).Error(0)
}

func (m *MockLedger) Recalculate(ctx context.Context, accountID string) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func withCorrelation(id string) any {
	return mock.MatchedBy(func(ctx context.Context) bool { return journal.CorrelationID(ctx) == id })
}

func TestLedgerService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordCarriesCorrelationID", func(t *testing.T) {
		l := new(MockLedger)
		req := ledger.RecordRequest{AccountID: "acc", CategoryID: "cat", Type: shared.OperationTypeIncome, Amount: decimal.NewFromInt(5)}
		l.On("Record", withCorrelation("corr-1"), req).Return(&operation.Operation{ID: "op", AccountID: "acc"}, nil).Once()
		svc := NewLedgerService(newTestLogger(), l)

		err := svc.Process(ctx, Command{ID: "c", Type: CommandRecord, CorrelationID: "corr-1", Record: req})

		require.NoError(t, err)
		l.AssertExpectations(t)
	})

	t.Run("UpdateDeleteRecalculate", func(t *testing.T) {
		l := new(MockLedger)
		patch := ledger.OperationPatch{Description: new(string)}
		l.On("Update", mock.Anything, "op", patch).Return(&operation.Operation{ID: "op"}, nil).Once()
		l.On("Delete", mock.Anything, "op").Return(nil).Once()
		l.On("Recalculate", mock.Anything, "acc").Return(&account.Account{ID: "acc"}, nil).Once()
		svc := NewLedgerService(newTestLogger(), l)

		require.NoError(t, svc.Process(ctx, Command{ID: "1", Type: CommandUpdate, OperationID: "op", Patch: patch}))
		require.NoError(t, svc.Process(ctx, Command{ID: "2", Type: CommandDelete, OperationID: "op"}))
		require.NoError(t, svc.Process(ctx, Command{ID: "3", Type: CommandRecalculate, AccountID: "acc"}))
		l.AssertExpectations(t)
	})

	t.Run("ErrorsPassThrough", func(t *testing.T) {
		l := new(MockLedger)
		notFound := shared.ErrNotFound{Entity: shared.EntityAccount, ID: "acc"}
		l.On("Recalculate", mock.Anything, "acc").Return(nil, notFound).Once()
		svc := NewLedgerService(newTestLogger(), l)

		err := svc.Process(ctx, Command{ID: "1", Type: CommandRecalculate, AccountID: "acc"})

		assert.ErrorIs(t, err, notFound)
	})

	t.Run("UnknownType", func(t *testing.T) {
		svc := NewLedgerService(newTestLogger(), new(MockLedger))

		assert.Error(t, svc.Process(ctx, Command{ID: "1", Type: "NOPE"}))
	})
}
