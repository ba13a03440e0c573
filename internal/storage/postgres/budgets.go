// internal/storage/postgres/budgets.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func (s *Storage) CreateBudget(ctx context.Context, name, ownerID string) (*domain.Budget, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var b domain.Budget
	err = tx.QueryRow(ctx, `
		INSERT INTO budgets (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at
	`, name, ownerID).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}

	// The creator joins as admin in the same transaction.
	_, err = tx.Exec(ctx, `
		INSERT INTO budget_members (budget_id, user_id, role)
		VALUES ($1, $2, $3)
	`, b.ID, ownerID, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	slog.Debug("budget created", "budget_id", b.ID, "owner_id", ownerID)
	return &b, nil
}

func (s *Storage) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.name, b.owner_id, b.created_at
		FROM budgets b
		JOIN budget_members m ON m.budget_id = b.id
		WHERE m.user_id = $1
		ORDER BY b.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Storage) GetBudget(ctx context.Context, id int64) (*domain.Budget, error) {
	var b domain.Budget
	err := s.db.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at FROM budgets WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (s *Storage) RenameBudget(ctx context.Context, id int64, name string) (*domain.Budget, error) {
	var b domain.Budget
	err := s.db.QueryRow(ctx, `
		UPDATE budgets SET name = $2 WHERE id = $1
		RETURNING id, name, owner_id, created_at
	`, id, name).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("rename budget: %w", err)
	}
	return &b, nil
}

func (s *Storage) DeleteBudget(ctx context.Context, id int64) error {
	// Members, invitations, categories, subcategories and transactions
	// go with it via ON DELETE CASCADE.
	tag, err := s.db.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	slog.Debug("budget deleted", "budget_id", id)
	return nil
}
