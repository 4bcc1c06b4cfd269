package ledger

import (
	"context"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

func getAccount(ctx context.Context, r store.Reader[*account.Account], id string) (*account.Account, error) {
	acc, ok, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound{Entity: shared.EntityAccount, ID: id}
	}
	return acc, nil
}

func getCategory(ctx context.Context, r store.Reader[*category.Category], id string) (*category.Category, error) {
	cat, ok, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound{Entity: shared.EntityCategory, ID: id}
	}
	return cat, nil
}

func getOperation(ctx context.Context, r store.Reader[*operation.Operation], id string) (*operation.Operation, error) {
	op, ok, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound{Entity: shared.EntityOperation, ID: id}
	}
	return op, nil
}
