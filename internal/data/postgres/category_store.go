package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/platform/persistence"
)

const (
	insertCategoryQuery = `
		INSERT INTO categories (id, name, type)
		VALUES ($1, $2, $3)
	`
	upsertCategoryQuery = `
		INSERT INTO categories (id, name, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type
	`
	selectCategoryQuery = `
		SELECT id, name, type
		FROM categories
		WHERE id = $1
	`
	selectCategoriesQuery = `
		SELECT id, name, type
		FROM categories
		ORDER BY id
	`
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1`
)

// CategoryStore persists categories in the categories table
type CategoryStore struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewCategoryStore(logger *slog.Logger, db *persistence.PostgresDB) *CategoryStore {
	return &CategoryStore{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (s *CategoryStore) Get(ctx context.Context, id string) (*category.Category, bool, error) {
	cat, err := scanCategory(s.querier.QueryRow(ctx, selectCategoryQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		s.logger.Error("Failed to get category", "id", id, "error", err)
		return nil, false, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, true, nil
}

func (s *CategoryStore) GetAll(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.querier.Query(ctx, selectCategoriesQuery)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryStore) Add(ctx context.Context, cat *category.Category) error {
	_, err := s.querier.Exec(ctx, insertCategoryQuery, cat.ID, cat.Name, string(cat.Type))
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateKey{Entity: shared.EntityCategory, ID: cat.ID}
		}
		s.logger.Error("Failed to insert category", "id", cat.ID, "error", err)
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *CategoryStore) Update(ctx context.Context, cat *category.Category) error {
	if _, err := s.querier.Exec(ctx, upsertCategoryQuery, cat.ID, cat.Name, string(cat.Type)); err != nil {
		s.logger.Error("Failed to update category", "id", cat.ID, "error", err)
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (s *CategoryStore) Remove(ctx context.Context, id string) error {
	if _, err := s.querier.Exec(ctx, deleteCategoryQuery, id); err != nil {
		s.logger.Error("Failed to delete category", "id", id, "error", err)
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func scanCategory(row pgx.Row) (*category.Category, error) {
	var (
		cat category.Category
		typ string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &typ); err != nil {
		return nil, err
	}
	cat.Type = shared.OperationType(typ)
	return &cat, nil
}
