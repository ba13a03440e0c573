// internal/storage/postgres/categories.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func (s *Storage) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO categories (budget_id, name, budget_amount, year, month)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.BudgetID, c.Name, c.BudgetAmount, c.Year, c.Month).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *Storage) ListCategories(ctx context.Context, budgetID int64, skip, limit int) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, budget_id, name, budget_amount, year, month, created_at
		FROM categories
		WHERE budget_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, budgetID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &c.BudgetAmount, &c.Year, &c.Month, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Subcategories = []domain.Subcategory{}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Storage) UpdateCategory(ctx context.Context, budgetID, id int64, upd domain.CategoryUpdate) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRow(ctx, `
		UPDATE categories
		SET name = COALESCE($3, name),
		    budget_amount = COALESCE($4, budget_amount)
		WHERE id = $1 AND budget_id = $2
		RETURNING id, budget_id, name, budget_amount, year, month, created_at
	`, id, budgetID, upd.Name, upd.BudgetAmount).
		Scan(&c.ID, &c.BudgetID, &c.Name, &c.BudgetAmount, &c.Year, &c.Month, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	c.Subcategories = []domain.Subcategory{}
	return &c, nil
}

func (s *Storage) DeleteCategory(ctx context.Context, budgetID, id int64) error {
	// Subcategories and their transactions cascade at the schema level.
	tag, err := s.db.Exec(ctx, `
		DELETE FROM categories WHERE id = $1 AND budget_id = $2
	`, id, budgetID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) BudgetSummary(ctx context.Context, budgetID int64, year, month int) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, budget_id, name, budget_amount, year, month, created_at
		FROM categories
		WHERE budget_id = $1 AND year = $2 AND month = $3
		ORDER BY id
	`, budgetID, year, month)
	if err != nil {
		return nil, fmt.Errorf("query summary categories: %w", err)
	}

	categories := []domain.Category{}
	categoryIdx := make(map[int64]int)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &c.BudgetAmount, &c.Year, &c.Month, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Subcategories = []domain.Subcategory{}
		categoryIdx[c.ID] = len(categories)
		categories = append(categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary categories: %w", err)
	}
	if len(categories) == 0 {
		return categories, nil
	}

	subRows, err := s.db.Query(ctx, `
		SELECT sc.id, sc.category_id, sc.name, sc.allotted, sc.created_at
		FROM subcategories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE c.budget_id = $1 AND c.year = $2 AND c.month = $3
		ORDER BY sc.id
	`, budgetID, year, month)
	if err != nil {
		return nil, fmt.Errorf("query summary subcategories: %w", err)
	}

	subcategoryIdx := make(map[int64][2]int) // subcategory id -> (category slot, subcategory slot)
	for subRows.Next() {
		var sc domain.Subcategory
		if err := subRows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Allotted, &sc.CreatedAt); err != nil {
			subRows.Close()
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		sc.Transactions = []domain.Transaction{}
		ci := categoryIdx[sc.CategoryID]
		subcategoryIdx[sc.ID] = [2]int{ci, len(categories[ci].Subcategories)}
		categories[ci].Subcategories = append(categories[ci].Subcategories, sc)
	}
	subRows.Close()
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("summary subcategories: %w", err)
	}

	txRows, err := s.db.Query(ctx, `
		SELECT t.id, t.subcategory_id, t.description, t.amount, t.date
		FROM transactions t
		JOIN subcategories sc ON sc.id = t.subcategory_id
		JOIN categories c ON c.id = sc.category_id
		WHERE c.budget_id = $1 AND c.year = $2 AND c.month = $3
		ORDER BY t.date, t.id
	`, budgetID, year, month)
	if err != nil {
		return nil, fmt.Errorf("query summary transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var t domain.Transaction
		if err := txRows.Scan(&t.ID, &t.SubcategoryID, &t.Description, &t.Amount, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		slot, ok := subcategoryIdx[t.SubcategoryID]
		if !ok {
			continue
		}
		sc := &categories[slot[0]].Subcategories[slot[1]]
		sc.Transactions = append(sc.Transactions, t)
	}
	return categories, txRows.Err()
}
