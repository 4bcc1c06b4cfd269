package mongo

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

func TestAccountCodec(t *testing.T) {
	acc := &account.Account{ID: "acc-1", Name: "Wallet", Balance: decimal.RequireFromString("-1234.56")}

	doc, err := accountCodec.ToDocument(acc)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", doc.ID)
	assert.Equal(t, "-1234.56", doc.Balance.String())

	back, err := accountCodec.FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, back.ID)
	assert.True(t, acc.Balance.Equal(back.Balance))
}

func TestOperationCodec(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*60*60)
	op := &operation.Operation{
		ID:          "op-1",
		Type:        shared.OperationTypeExpense,
		AccountID:   "acc-1",
		CategoryID:  "cat-1",
		Amount:      decimal.RequireFromString("0.1"),
		Date:        time.Date(2024, 1, 2, 15, 0, 0, 0, local),
		Description: "coffee",
	}

	doc, err := operationCodec.ToDocument(op)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, doc.Date.Location())
	assert.Equal(t, "EXPENSE", doc.Type)

	back, err := operationCodec.FromDocument(doc)
	require.NoError(t, err)
	assert.True(t, op.Date.Equal(back.Date))
	assert.True(t, op.Amount.Equal(back.Amount))
	assert.Equal(t, "-0.1", back.SignedAmount().String())
	assert.Equal(t, "coffee", back.Description)
}

func TestCategoryCodec(t *testing.T) {
	cat := &category.Category{ID: "cat-1", Name: "Salary", Type: shared.OperationTypeIncome}

	doc, err := categoryCodec.ToDocument(cat)
	require.NoError(t, err)
	back, err := categoryCodec.FromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, cat, back)
}

func TestDecimal128Bounds(t *testing.T) {
	huge := decimal.New(1, 7000)

	_, err := toDecimal128(huge)
	assert.Error(t, err)
}

func TestNewStores(t *testing.T) {
	// mongo.Connect does not dial, so collection handles can be built offline
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database("ledger_test")
	logger := slog.Default()

	accounts := NewAccountStore(logger, db)
	categories := NewCategoryStore(logger, db)
	operations := NewOperationStore(logger, db)

	assert.Equal(t, AccountsCollection, accounts.collection.Name())
	assert.Equal(t, CategoriesCollection, categories.collection.Name())
	assert.Equal(t, OperationsCollection, operations.collection.Name())
	assert.Equal(t, shared.EntityOperation, operations.entity)
}
