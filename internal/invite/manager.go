// internal/invite/manager.go
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/voidreamer/simple-budget/internal/access"
	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/storage"
)

// Store is the storage surface the manager needs.
type Store interface {
	storage.InvitationStorage
	GetBudget(ctx context.Context, id int64) (*domain.Budget, error)
}

// Manager owns the invitation lifecycle: pending -> accepted, expired
// or cancelled. Expiry is lazy — a pending invitation past its
// deadline flips only when accept, cancel or validate touches it.
type Manager struct {
	store Store
	guard *access.Guard
	now   func() time.Time
}

func NewManager(store Store, guard *access.Guard) *Manager {
	return &Manager{store: store, guard: guard, now: time.Now}
}

// Validation is the public, read-only view of a pending invitation.
type Validation struct {
	BudgetName   string                  `json:"budget_name"`
	InviteeEmail string                  `json:"invitee_email"`
	Role         domain.Role             `json:"role"`
	ExpiresAt    time.Time               `json:"expires_at"`
	Status       domain.InvitationStatus `json:"status"`
}

// Create issues a pending invitation. Caller must hold an admin role
// (or own the budget); at most one pending, unexpired invitation may
// exist per (budget, email).
func (m *Manager) Create(ctx context.Context, inviterID string, budgetID int64, email string, role domain.Role) (*domain.Invitation, error) {
	if _, err := m.guard.Authorize(ctx, inviterID, budgetID, domain.ManageRoles...); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	now := m.now()

	// A lapsed invitation is still stored as pending until something
	// touches it; flip it now so the partial unique index on pending
	// rows cannot block the re-invite.
	if err := m.store.ExpireStalePending(ctx, budgetID, email, now); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	exists, err := m.store.HasPendingInvitation(ctx, budgetID, email, now)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateInvitation
	}

	inv := &domain.Invitation{
		BudgetID:     budgetID,
		InviterID:    inviterID,
		InviteeEmail: email,
		Role:         role,
		Status:       domain.InvitationPending,
		ExpiresAt:    now.Add(domain.InvitationTTL),
	}

	// A token clash is a retryable creation failure: regenerate and
	// try again rather than overwrite.
	backoff := retry.WithMaxRetries(3, retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := NewToken()
		if err != nil {
			return err
		}
		inv.Token = token
		if err := m.store.CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, storage.ErrTokenCollision) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	slog.Info("invitation created", "budget_id", budgetID, "invitation_id", inv.ID, "role", role)
	return inv, nil
}

// Accept redeems a token for the authenticated caller. The verified
// email must match the invitee email (both sides lowercased). On
// success the membership insert and the status flip are one
// transaction; when the caller is already a member the invitation is
// still consumed but the caller gets ErrAlreadyMember.
func (m *Manager) Accept(ctx context.Context, token, userID, email string) (*domain.BudgetMember, error) {
	inv, err := m.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if err := m.statusGate(ctx, inv, now); err != nil {
		return nil, err
	}

	if !strings.EqualFold(email, inv.InviteeEmail) {
		// Not consumed: the right account can still accept.
		return nil, fmt.Errorf("%w: invitation was issued to a different email", domain.ErrForbidden)
	}

	member, err := m.store.AcceptInvitation(ctx, inv.ID, userID, inv.Role, now)
	if err != nil {
		return nil, err
	}

	slog.Info("invitation accepted", "invitation_id", inv.ID, "budget_id", inv.BudgetID, "user_id", userID)
	return member, nil
}

// Cancel voids a pending invitation. Admin/owner only.
func (m *Manager) Cancel(ctx context.Context, callerID string, invitationID int64) error {
	inv, err := m.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if _, err := m.guard.Authorize(ctx, callerID, inv.BudgetID, domain.ManageRoles...); err != nil {
		return err
	}
	if err := m.statusGate(ctx, inv, m.now()); err != nil {
		return err
	}

	if err := m.store.MarkCancelled(ctx, inv.ID); err != nil {
		return err
	}
	slog.Info("invitation cancelled", "invitation_id", inv.ID, "budget_id", inv.BudgetID)
	return nil
}

// Validate is the unauthenticated read used by the invite landing
// page. It never creates anything, but it does flip a lapsed pending
// invitation to expired.
func (m *Manager) Validate(ctx context.Context, token string) (*Validation, error) {
	inv, err := m.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := m.statusGate(ctx, inv, m.now()); err != nil {
		return nil, err
	}

	budget, err := m.store.GetBudget(ctx, inv.BudgetID)
	if err != nil {
		return nil, err
	}
	return &Validation{
		BudgetName:   budget.Name,
		InviteeEmail: inv.InviteeEmail,
		Role:         inv.Role,
		ExpiresAt:    inv.ExpiresAt,
		Status:       inv.Status,
	}, nil
}

// List returns a budget's invitations, optionally filtered by status.
// Both the filter and the reported status are evaluated as of now, so a
// lapsed pending invitation matches "expired" and never "pending".
// Nothing is rewritten in storage.
func (m *Manager) List(ctx context.Context, callerID string, budgetID int64, status domain.InvitationStatus) ([]domain.Invitation, error) {
	if _, err := m.guard.Authorize(ctx, callerID, budgetID, domain.ManageRoles...); err != nil {
		return nil, err
	}
	invitations, err := m.store.ListInvitations(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	filtered := make([]domain.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		inv.Status = inv.EffectiveStatus(now)
		if status != "" && inv.Status != status {
			continue
		}
		filtered = append(filtered, inv)
	}
	return filtered, nil
}

// statusGate rejects non-pending invitations and performs the lazy
// expiry flip when a pending one has lapsed.
func (m *Manager) statusGate(ctx context.Context, inv *domain.Invitation, now time.Time) error {
	statusErr := inv.StatusError(now)
	if statusErr == nil {
		return nil
	}
	if errors.Is(statusErr, domain.ErrInvitationExpired) && inv.Status == domain.InvitationPending {
		if err := m.store.MarkExpired(ctx, inv.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("expire invitation: %w", err)
		}
		inv.Status = domain.InvitationExpired
	}
	return statusErr
}
