// internal/storage/postgres/subcategories.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func (s *Storage) CreateSubcategory(ctx context.Context, budgetID int64, sc *domain.Subcategory) error {
	// The parent category must sit in the caller's budget; a foreign
	// category id is indistinguishable from a missing one.
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND budget_id = $2)
	`, sc.CategoryID, budgetID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO subcategories (category_id, name, allotted)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, sc.CategoryID, sc.Name, sc.Allotted).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}

func (s *Storage) ListSubcategories(ctx context.Context, budgetID, categoryID int64) ([]domain.Subcategory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sc.id, sc.category_id, sc.name, sc.allotted, sc.created_at
		FROM subcategories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE sc.category_id = $1 AND c.budget_id = $2
		ORDER BY sc.id
	`, categoryID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	subcategories := []domain.Subcategory{}
	for rows.Next() {
		var sc domain.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Allotted, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		sc.Transactions = []domain.Transaction{}
		subcategories = append(subcategories, sc)
	}
	return subcategories, rows.Err()
}

func (s *Storage) UpdateSubcategory(ctx context.Context, budgetID, id int64, upd domain.SubcategoryUpdate) (*domain.Subcategory, error) {
	var sc domain.Subcategory
	err := s.db.QueryRow(ctx, `
		UPDATE subcategories sc
		SET name = COALESCE($3, sc.name),
		    allotted = COALESCE($4, sc.allotted)
		FROM categories c
		WHERE sc.id = $1 AND sc.category_id = c.id AND c.budget_id = $2
		RETURNING sc.id, sc.category_id, sc.name, sc.allotted, sc.created_at
	`, id, budgetID, upd.Name, upd.Allotted).
		Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Allotted, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update subcategory: %w", err)
	}
	sc.Transactions = []domain.Transaction{}
	return &sc, nil
}

func (s *Storage) DeleteSubcategory(ctx context.Context, budgetID, id int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM subcategories sc
		USING categories c
		WHERE sc.id = $1 AND sc.category_id = c.id AND c.budget_id = $2
	`, id, budgetID)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
