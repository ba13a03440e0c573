// internal/storage/postgres/invitations.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/storage"
)

const invitationColumns = `id, budget_id, inviter_id, invitee_email, token, role, status, created_at, expires_at, accepted_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(&inv.ID, &inv.BudgetID, &inv.InviterID, &inv.InviteeEmail,
		&inv.Token, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt, &inv.AcceptedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Storage) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO budget_invitations (budget_id, inviter_id, invitee_email, token, role, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, inv.BudgetID, inv.InviterID, inv.InviteeEmail, inv.Token, inv.Role, inv.Status, inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "budget_invitations_token_key") {
			return storage.ErrTokenCollision
		}
		// Loser of a concurrent-create race for the same (budget,
		// email); the partial unique index decides.
		if isUniqueViolation(err, "budget_invitations_pending_idx") {
			return domain.ErrDuplicateInvitation
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	slog.Debug("invitation created", "invitation_id", inv.ID, "budget_id", inv.BudgetID)
	return nil
}

func (s *Storage) GetInvitation(ctx context.Context, id int64) (*domain.Invitation, error) {
	inv, err := scanInvitation(s.db.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM budget_invitations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *Storage) GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := scanInvitation(s.db.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM budget_invitations WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

// ListInvitations returns every invitation of the budget. Status
// filtering happens above storage, on effective status, so lapsed
// pending rows land in the right bucket.
func (s *Storage) ListInvitations(ctx context.Context, budgetID int64) ([]domain.Invitation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+invitationColumns+` FROM budget_invitations WHERE budget_id = $1 ORDER BY created_at DESC`,
		budgetID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

func (s *Storage) HasPendingInvitation(ctx context.Context, budgetID int64, email string, now time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM budget_invitations
			WHERE budget_id = $1 AND invitee_email = $2 AND status = 'pending' AND expires_at > $3
		)
	`, budgetID, email, now).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending invitation: %w", err)
	}
	return exists, nil
}

func (s *Storage) ExpireStalePending(ctx context.Context, budgetID int64, email string, now time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE budget_invitations SET status = 'expired'
		WHERE budget_id = $1 AND invitee_email = $2 AND status = 'pending' AND expires_at <= $3
	`, budgetID, email, now)
	if err != nil {
		return fmt.Errorf("expire stale invitations: %w", err)
	}
	return nil
}

func (s *Storage) MarkExpired(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, domain.InvitationExpired)
}

func (s *Storage) MarkCancelled(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, domain.InvitationCancelled)
}

func (s *Storage) setStatus(ctx context.Context, id int64, status domain.InvitationStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE budget_invitations SET status = $2 WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return fmt.Errorf("set invitation status %s: %w", status, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) AcceptInvitation(ctx context.Context, invitationID int64, userID string, role domain.Role, now time.Time) (*domain.BudgetMember, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var budgetID int64
	err = tx.QueryRow(ctx, `
		SELECT budget_id FROM budget_invitations
		WHERE id = $1 AND status = 'pending'
		FOR UPDATE
	`, invitationID).Scan(&budgetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race: the row flipped off pending between the
			// caller's status check and our lock. Report the actual
			// status, same as a sequential second attempt would see.
			return nil, acceptConflict(ctx, tx, invitationID)
		}
		return nil, fmt.Errorf("lock invitation: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE budget_invitations SET status = $2, accepted_at = $3 WHERE id = $1
	`, invitationID, domain.InvitationAccepted, now)
	if err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	var existing bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM budget_members WHERE budget_id = $1 AND user_id = $2)
	`, budgetID, userID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check existing membership: %w", err)
	}
	if existing {
		// The invitation is consumed either way, so commit the status
		// flip and report the conflict. No duplicate membership row.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return nil, domain.ErrAlreadyMember
	}

	var m domain.BudgetMember
	err = tx.QueryRow(ctx, `
		INSERT INTO budget_members (budget_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, budget_id, user_id, role, created_at
	`, budgetID, userID, role).Scan(&m.ID, &m.BudgetID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	slog.Debug("invitation accepted", "invitation_id", invitationID, "budget_id", budgetID, "user_id", userID)
	return &m, nil
}

func acceptConflict(ctx context.Context, tx pgx.Tx, id int64) error {
	var status domain.InvitationStatus
	err := tx.QueryRow(ctx, `SELECT status FROM budget_invitations WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("recheck invitation: %w", err)
	}
	switch status {
	case domain.InvitationAccepted:
		return domain.ErrInvitationAccepted
	case domain.InvitationCancelled:
		return domain.ErrInvitationCancelled
	case domain.InvitationExpired:
		return domain.ErrInvitationExpired
	}
	return domain.ErrNotFound
}
