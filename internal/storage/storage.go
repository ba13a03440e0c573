// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/voidreamer/simple-budget/internal/domain"
)

// ErrTokenCollision reports that an invitation insert hit the unique
// token index. The generator does not guarantee uniqueness, the index
// does; callers retry with a fresh token.
var ErrTokenCollision = errors.New("invitation token collision")

type BudgetStorage interface {
	// CreateBudget inserts the budget and its creator as an admin
	// member in one transaction. No window where the budget exists
	// without a member.
	CreateBudget(ctx context.Context, name, ownerID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, id int64) (*domain.Budget, error)
	RenameBudget(ctx context.Context, id int64, name string) (*domain.Budget, error)
	// DeleteBudget removes the budget and, via cascade, its members,
	// invitations, categories, subcategories and transactions.
	DeleteBudget(ctx context.Context, id int64) error
}

type MemberStorage interface {
	// GetMember returns nil without error when no membership row
	// exists.
	GetMember(ctx context.Context, budgetID int64, userID string) (*domain.BudgetMember, error)
	ListMembers(ctx context.Context, budgetID int64) ([]domain.BudgetMember, error)
	AddMember(ctx context.Context, budgetID int64, userID string, role domain.Role) (*domain.BudgetMember, error)
	RemoveMember(ctx context.Context, budgetID int64, userID string) error
}

type InvitationStorage interface {
	// CreateInvitation fills ID and CreatedAt. A duplicate pending
	// invitation for (budget, email) surfaces as
	// domain.ErrDuplicateInvitation, a token clash as
	// ErrTokenCollision.
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	GetInvitation(ctx context.Context, id int64) (*domain.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error)
	ListInvitations(ctx context.Context, budgetID int64) ([]domain.Invitation, error)
	HasPendingInvitation(ctx context.Context, budgetID int64, email string, now time.Time) (bool, error)
	// ExpireStalePending flips lapsed pending invitations for (budget,
	// email) to expired. The partial unique index on pending rows knows
	// nothing about expiry, so a re-invite must clear lapsed rows first.
	ExpireStalePending(ctx context.Context, budgetID int64, email string, now time.Time) error
	MarkExpired(ctx context.Context, id int64) error
	MarkCancelled(ctx context.Context, id int64) error
	// AcceptInvitation atomically inserts the membership and marks the
	// invitation accepted. When the user is already a member the
	// invitation is still consumed (marked accepted) and
	// domain.ErrAlreadyMember is returned with no duplicate row. An
	// invitation no longer pending surfaces its status-specific error;
	// only a missing row is domain.ErrNotFound.
	AcceptInvitation(ctx context.Context, invitationID int64, userID string, role domain.Role, now time.Time) (*domain.BudgetMember, error)
}

// Budget-scoped entity storage. Every method takes the authorized
// budget id and resolves entities through the ownership chain
// (transaction -> subcategory -> category -> budget); ids belonging to
// another budget come back as domain.ErrNotFound.
type CategoryStorage interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context, budgetID int64, skip, limit int) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, budgetID, id int64, upd domain.CategoryUpdate) (*domain.Category, error)
	DeleteCategory(ctx context.Context, budgetID, id int64) error
	// BudgetSummary returns the month's categories with nested
	// subcategories and transactions.
	BudgetSummary(ctx context.Context, budgetID int64, year, month int) ([]domain.Category, error)
}

type SubcategoryStorage interface {
	CreateSubcategory(ctx context.Context, budgetID int64, s *domain.Subcategory) error
	ListSubcategories(ctx context.Context, budgetID, categoryID int64) ([]domain.Subcategory, error)
	UpdateSubcategory(ctx context.Context, budgetID, id int64, upd domain.SubcategoryUpdate) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, budgetID, id int64) error
}

type TransactionStorage interface {
	CreateTransaction(ctx context.Context, budgetID int64, t *domain.Transaction) error
	ListTransactions(ctx context.Context, budgetID, subcategoryID int64) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, budgetID, id int64, upd domain.TransactionUpdate) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, budgetID, id int64) error
}
