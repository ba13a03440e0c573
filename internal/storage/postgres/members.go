// internal/storage/postgres/members.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func (s *Storage) GetMember(ctx context.Context, budgetID int64, userID string) (*domain.BudgetMember, error) {
	var m domain.BudgetMember
	err := s.db.QueryRow(ctx, `
		SELECT id, budget_id, user_id, role, created_at
		FROM budget_members
		WHERE budget_id = $1 AND user_id = $2
	`, budgetID, userID).Scan(&m.ID, &m.BudgetID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (s *Storage) ListMembers(ctx context.Context, budgetID int64) ([]domain.BudgetMember, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, budget_id, user_id, role, created_at
		FROM budget_members
		WHERE budget_id = $1
		ORDER BY created_at
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []domain.BudgetMember{}
	for rows.Next() {
		var m domain.BudgetMember
		if err := rows.Scan(&m.ID, &m.BudgetID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Storage) AddMember(ctx context.Context, budgetID int64, userID string, role domain.Role) (*domain.BudgetMember, error) {
	var m domain.BudgetMember
	err := s.db.QueryRow(ctx, `
		INSERT INTO budget_members (budget_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, budget_id, user_id, role, created_at
	`, budgetID, userID, role).Scan(&m.ID, &m.BudgetID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "budget_members_budget_id_user_id_key") {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	return &m, nil
}

func (s *Storage) RemoveMember(ctx context.Context, budgetID int64, userID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM budget_members WHERE budget_id = $1 AND user_id = $2
	`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
