// internal/domain/models.go
package domain

import "time"

// Budget is a shareable container scoping categories and transactions
// to a set of authorized users. OwnerID is set at creation and never
// changes; it is authoritative for deletion rights.
type Budget struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetMember links a user to a budget with a role. Unique per
// (budget_id, user_id).
type BudgetMember struct {
	ID        int64     `json:"id"`
	BudgetID  int64     `json:"budget_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Invitation is a time-boxed, email-bound, single-use token granting a
// role on a budget when accepted.
type Invitation struct {
	ID           int64            `json:"id"`
	BudgetID     int64            `json:"budget_id"`
	InviterID    string           `json:"inviter_id"`
	InviteeEmail string           `json:"invitee_email"`
	Token        string           `json:"token"`
	Role         Role             `json:"role"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
}

// Category groups spending within a budget for one (year, month)
// period. BudgetAmount is the monetary allotment; the JSON name
// "budget" follows the external API, the Go name keeps it distinct
// from the Budget container.
type Category struct {
	ID            int64         `json:"id"`
	BudgetID      int64         `json:"budget_id"`
	Name          string        `json:"name"`
	BudgetAmount  float64       `json:"budget"`
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	CreatedAt     time.Time     `json:"created_at"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Subcategory struct {
	ID           int64         `json:"id"`
	CategoryID   int64         `json:"category_id"`
	Name         string        `json:"name"`
	Allotted     float64       `json:"allotted"`
	CreatedAt    time.Time     `json:"created_at"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	ID            int64     `json:"id"`
	SubcategoryID int64     `json:"subcategory_id"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
}

// CategoryUpdate carries optional fields for a partial category update.
// Nil means "leave unchanged".
type CategoryUpdate struct {
	Name         *string
	BudgetAmount *float64
}

type SubcategoryUpdate struct {
	Name     *string
	Allotted *float64
}

type TransactionUpdate struct {
	Description *string
	Amount      *float64
	Date        *time.Time
}
