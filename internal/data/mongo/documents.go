package mongo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

const (
	AccountsCollection   = "accounts"
	CategoriesCollection = "categories"
	OperationsCollection = "operations"
)

type accountDocument struct {
	ID      string               `bson:"_id"`
	Name    string               `bson:"name"`
	Balance primitive.Decimal128 `bson:"balance"`
}

type categoryDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
	Type string `bson:"type"`
}

type operationDocument struct {
	ID          string               `bson:"_id"`
	Type        string               `bson:"type"`
	AccountID   string               `bson:"account_id"`
	CategoryID  string               `bson:"category_id"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Date        time.Time            `bson:"date"`
	Description string               `bson:"description,omitempty"`
}

func NewAccountStore(logger *slog.Logger, db *mongo.Database) *Store[*account.Account, accountDocument] {
	return NewStore(logger, db, AccountsCollection, shared.EntityAccount, accountCodec)
}

func NewCategoryStore(logger *slog.Logger, db *mongo.Database) *Store[*category.Category, categoryDocument] {
	return NewStore(logger, db, CategoriesCollection, shared.EntityCategory, categoryCodec)
}

func NewOperationStore(logger *slog.Logger, db *mongo.Database) *Store[*operation.Operation, operationDocument] {
	return NewStore(logger, db, OperationsCollection, shared.EntityOperation, operationCodec)
}

var accountCodec = Codec[*account.Account, accountDocument]{
	ToDocument: func(acc *account.Account) (accountDocument, error) {
		balance, err := toDecimal128(acc.Balance)
		if err != nil {
			return accountDocument{}, err
		}
		return accountDocument{ID: acc.ID, Name: acc.Name, Balance: balance}, nil
	},
	FromDocument: func(doc accountDocument) (*account.Account, error) {
		balance, err := fromDecimal128(doc.Balance)
		if err != nil {
			return nil, err
		}
		return &account.Account{ID: doc.ID, Name: doc.Name, Balance: balance}, nil
	},
}

var categoryCodec = Codec[*category.Category, categoryDocument]{
	ToDocument: func(cat *category.Category) (categoryDocument, error) {
		return categoryDocument{ID: cat.ID, Name: cat.Name, Type: string(cat.Type)}, nil
	},
	FromDocument: func(doc categoryDocument) (*category.Category, error) {
		return &category.Category{ID: doc.ID, Name: doc.Name, Type: shared.OperationType(doc.Type)}, nil
	},
}

var operationCodec = Codec[*operation.Operation, operationDocument]{
	ToDocument: func(op *operation.Operation) (operationDocument, error) {
		amount, err := toDecimal128(op.Amount)
		if err != nil {
			return operationDocument{}, err
		}
		return operationDocument{
			ID:          op.ID,
			Type:        string(op.Type),
			AccountID:   op.AccountID,
			CategoryID:  op.CategoryID,
			Amount:      amount,
			Date:        op.Date.UTC(),
			Description: op.Description,
		}, nil
	},
	FromDocument: func(doc operationDocument) (*operation.Operation, error) {
		amount, err := fromDecimal128(doc.Amount)
		if err != nil {
			return nil, err
		}
		return &operation.Operation{
			ID:          doc.ID,
			Type:        shared.OperationType(doc.Type),
			AccountID:   doc.AccountID,
			CategoryID:  doc.CategoryID,
			Amount:      amount,
			Date:        doc.Date.UTC(),
			Description: doc.Description,
		}, nil
	},
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s does not fit decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid stored amount %s: %w", v, err)
	}
	return d, nil
}
