// internal/domain/errors.go
package domain

import "errors"

// Sentinel errors surfaced to the API layer. Handlers map these to HTTP
// statuses with errors.Is; storage and services wrap them with context.
var (
	// ErrNotFound covers both "does not exist" and "exists in a budget
	// the caller cannot see" so that existence never leaks across
	// tenants.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrInvalidInput = errors.New("invalid input")

	ErrAlreadyMember       = errors.New("user is already a member of this budget")
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	ErrInvitationAccepted  = errors.New("invitation has already been accepted")
	ErrInvitationCancelled = errors.New("invitation has been cancelled")
	ErrInvitationExpired   = errors.New("invitation has expired")

	ErrMissingBudgetHeader = errors.New("X-Budget-ID header is required")
	ErrInvalidBudgetHeader = errors.New("X-Budget-ID must be an integer")
)
