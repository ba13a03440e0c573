// internal/domain/invitation.go
package domain

import (
	"fmt"
	"time"
)

// InvitationStatus is the stored lifecycle state of an invitation.
// "pending" is initial; the other three are terminal.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// InvitationTTL is how long a new invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

func ParseInvitationStatus(s string) (InvitationStatus, error) {
	switch InvitationStatus(s) {
	case InvitationPending, InvitationAccepted, InvitationExpired, InvitationCancelled:
		return InvitationStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown invitation status %q", ErrInvalidInput, s)
}

// EffectiveStatus is the status as of now. There is no background
// sweep: a pending invitation past its expiry stays "pending" in
// storage until something touches it, so every access point must
// evaluate expiry through this one function.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// StatusError maps a non-pending (or lapsed) status to its error.
// Returns nil for a live pending invitation.
func (i *Invitation) StatusError(now time.Time) error {
	switch i.EffectiveStatus(now) {
	case InvitationAccepted:
		return ErrInvitationAccepted
	case InvitationCancelled:
		return ErrInvitationCancelled
	case InvitationExpired:
		return ErrInvitationExpired
	}
	return nil
}
