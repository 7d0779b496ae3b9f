package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bankcat/bankcat/internal/model"
)

// GetCategories returns a client's active categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context, clientID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db, clientID)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable, clientID int64) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, client_id, name, type, nature, is_active, created_at
		FROM categories
		WHERE client_id = ? AND is_active = 1
		ORDER BY name
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(
			&cat.ID,
			&cat.ClientID,
			&cat.Name,
			&cat.Type,
			&cat.Nature,
			&cat.IsActive,
			&cat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// CreateCategory adds a category to a client's master list.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, clientID int64, name string, categoryType model.CategoryType, nature model.CategoryNature) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.createCategoryTx(ctx, s.db, clientID, name, categoryType, nature)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, clientID int64, name string, categoryType model.CategoryType, nature model.CategoryNature) (*model.Category, error) {
	if categoryType == "" {
		categoryType = model.CategoryTypeExpense
	}
	if nature == "" {
		nature = model.NatureAny
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (client_id, name, type, nature, is_active)
		VALUES (?, ?, ?, ?, 1)
	`, clientID, name, categoryType, nature)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return &model.Category{
		ID:        id,
		ClientID:  clientID,
		Name:      name,
		Type:      categoryType,
		Nature:    nature,
		IsActive:  true,
		CreatedAt: time.Now(),
	}, nil
}
