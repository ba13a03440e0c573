// internal/storage/postgres/transactions.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func (s *Storage) CreateTransaction(ctx context.Context, budgetID int64, t *domain.Transaction) error {
	// Walk subcategory -> category -> budget before writing.
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subcategories sc
			JOIN categories c ON c.id = sc.category_id
			WHERE sc.id = $1 AND c.budget_id = $2
		)
	`, t.SubcategoryID, budgetID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check subcategory: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO transactions (subcategory_id, description, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, t.SubcategoryID, t.Description, t.Amount, t.Date).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Storage) ListTransactions(ctx context.Context, budgetID, subcategoryID int64) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.subcategory_id, t.description, t.amount, t.date
		FROM transactions t
		JOIN subcategories sc ON sc.id = t.subcategory_id
		JOIN categories c ON c.id = sc.category_id
		WHERE t.subcategory_id = $1 AND c.budget_id = $2
		ORDER BY t.date, t.id
	`, subcategoryID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.SubcategoryID, &t.Description, &t.Amount, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *Storage) UpdateTransaction(ctx context.Context, budgetID, id int64, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.db.QueryRow(ctx, `
		UPDATE transactions t
		SET description = COALESCE($3, t.description),
		    amount = COALESCE($4, t.amount),
		    date = COALESCE($5, t.date)
		FROM subcategories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE t.id = $1 AND t.subcategory_id = sc.id AND c.budget_id = $2
		RETURNING t.id, t.subcategory_id, t.description, t.amount, t.date
	`, id, budgetID, upd.Description, upd.Amount, upd.Date).
		Scan(&t.ID, &t.SubcategoryID, &t.Description, &t.Amount, &t.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return &t, nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, budgetID, id int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM transactions t
		USING subcategories sc, categories c
		WHERE t.id = $1
		AND t.subcategory_id = sc.id
		AND sc.category_id = c.id
		AND c.budget_id = $2
	`, id, budgetID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
