package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/platform/persistence"
)

const (
	insertAccountQuery = `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
	`
	upsertAccountQuery = `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, balance = EXCLUDED.balance
	`
	selectAccountQuery = `
		SELECT id, name, balance::text
		FROM accounts
		WHERE id = $1
	`
	selectAccountsQuery = `
		SELECT id, name, balance::text
		FROM accounts
		ORDER BY id
	`
	deleteAccountQuery = `DELETE FROM accounts WHERE id = $1`
)

// AccountStore persists accounts in the accounts table
type AccountStore struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewAccountStore(logger *slog.Logger, db *persistence.PostgresDB) *AccountStore {
	return &AccountStore{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (s *AccountStore) Get(ctx context.Context, id string) (*account.Account, bool, error) {
	acc, err := scanAccount(s.querier.QueryRow(ctx, selectAccountQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		s.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, false, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, true, nil
}

func (s *AccountStore) GetAll(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.querier.Query(ctx, selectAccountsQuery)
	if err != nil {
		s.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountStore) Add(ctx context.Context, acc *account.Account) error {
	_, err := s.querier.Exec(ctx, insertAccountQuery, acc.ID, acc.Name, acc.Balance)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateKey{Entity: shared.EntityAccount, ID: acc.ID}
		}
		s.logger.Error("Failed to insert account", "id", acc.ID, "error", err)
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *AccountStore) Update(ctx context.Context, acc *account.Account) error {
	if _, err := s.querier.Exec(ctx, upsertAccountQuery, acc.ID, acc.Name, acc.Balance); err != nil {
		s.logger.Error("Failed to update account", "id", acc.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *AccountStore) Remove(ctx context.Context, id string) error {
	if _, err := s.querier.Exec(ctx, deleteAccountQuery, id); err != nil {
		s.logger.Error("Failed to delete account", "id", id, "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc     account.Account
		balance string
	)
	if err := row.Scan(&acc.ID, &acc.Name, &balance); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q for account %s: %w", balance, acc.ID, err)
	}
	acc.Balance = parsed
	return &acc, nil
}
