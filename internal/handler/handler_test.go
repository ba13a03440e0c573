// internal/handler/handler_test.go
//
// Shared in-memory fake and request helpers for the handler tests. The
// fake mirrors the postgres semantics the handlers rely on: GetMember
// returns nil on absence, budget-scoped lookups resolve through the
// ownership chain and come back as domain.ErrNotFound for foreign ids,
// and AcceptInvitation consumes the invitation even when the user is
// already a member.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/middleware"
	"github.com/voidreamer/simple-budget/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	budgets      map[int64]*domain.Budget
	members      map[int64]map[string]*domain.BudgetMember
	invitations  map[int64]*domain.Invitation
	categories   map[int64]*domain.Category
	subcats      map[int64]*domain.Subcategory
	transactions map[int64]*domain.Transaction
	nextID       int64

	categoryInserts    int
	transactionInserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		budgets:      map[int64]*domain.Budget{},
		members:      map[int64]map[string]*domain.BudgetMember{},
		invitations:  map[int64]*domain.Invitation{},
		categories:   map[int64]*domain.Category{},
		subcats:      map[int64]*domain.Subcategory{},
		transactions: map[int64]*domain.Transaction{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) putMember(budgetID int64, userID string, role domain.Role) *domain.BudgetMember {
	if f.members[budgetID] == nil {
		f.members[budgetID] = map[string]*domain.BudgetMember{}
	}
	m := &domain.BudgetMember{ID: f.id(), BudgetID: budgetID, UserID: userID, Role: role}
	f.members[budgetID][userID] = m
	return m
}

// === BudgetStorage ===

func (f *fakeStore) CreateBudget(_ context.Context, name, ownerID string) (*domain.Budget, error) {
	b := &domain.Budget{ID: f.id(), Name: name, OwnerID: ownerID}
	f.budgets[b.ID] = b
	f.putMember(b.ID, ownerID, domain.RoleAdmin)
	return b, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	var out []domain.Budget
	for id, b := range f.budgets {
		if f.members[id][userID] != nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetBudget(_ context.Context, id int64) (*domain.Budget, error) {
	b, ok := f.budgets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) RenameBudget(_ context.Context, id int64, name string) (*domain.Budget, error) {
	b, ok := f.budgets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Name = name
	return b, nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, id int64) error {
	if _, ok := f.budgets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.budgets, id)
	delete(f.members, id)
	return nil
}

// === MemberStorage ===

func (f *fakeStore) GetMember(_ context.Context, budgetID int64, userID string) (*domain.BudgetMember, error) {
	return f.members[budgetID][userID], nil
}

func (f *fakeStore) ListMembers(_ context.Context, budgetID int64) ([]domain.BudgetMember, error) {
	var out []domain.BudgetMember
	for _, m := range f.members[budgetID] {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) AddMember(_ context.Context, budgetID int64, userID string, role domain.Role) (*domain.BudgetMember, error) {
	if f.members[budgetID][userID] != nil {
		return nil, domain.ErrAlreadyMember
	}
	return f.putMember(budgetID, userID, role), nil
}

func (f *fakeStore) RemoveMember(_ context.Context, budgetID int64, userID string) error {
	if f.members[budgetID][userID] == nil {
		return domain.ErrNotFound
	}
	delete(f.members[budgetID], userID)
	return nil
}

// === InvitationStorage ===

func (f *fakeStore) CreateInvitation(_ context.Context, inv *domain.Invitation) error {
	// Same rule as the schema's partial unique index: stored status
	// only, no expiry clause.
	for _, existing := range f.invitations {
		if existing.BudgetID == inv.BudgetID && existing.InviteeEmail == inv.InviteeEmail &&
			existing.Status == domain.InvitationPending {
			return domain.ErrDuplicateInvitation
		}
	}
	inv.ID = f.id()
	stored := *inv
	f.invitations[inv.ID] = &stored
	return nil
}

func (f *fakeStore) GetInvitation(_ context.Context, id int64) (*domain.Invitation, error) {
	inv, ok := f.invitations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) GetInvitationByToken(_ context.Context, token string) (*domain.Invitation, error) {
	for _, inv := range f.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) ListInvitations(_ context.Context, budgetID int64) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range f.invitations {
		if inv.BudgetID == budgetID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) HasPendingInvitation(_ context.Context, budgetID int64, email string, now time.Time) (bool, error) {
	for _, inv := range f.invitations {
		if inv.BudgetID == budgetID && inv.InviteeEmail == email &&
			inv.Status == domain.InvitationPending && inv.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExpireStalePending(_ context.Context, budgetID int64, email string, now time.Time) error {
	for _, inv := range f.invitations {
		if inv.BudgetID == budgetID && inv.InviteeEmail == email &&
			inv.Status == domain.InvitationPending && !inv.ExpiresAt.After(now) {
			inv.Status = domain.InvitationExpired
		}
	}
	return nil
}

func (f *fakeStore) setInvitationStatus(id int64, status domain.InvitationStatus) error {
	inv, ok := f.invitations[id]
	if !ok || inv.Status != domain.InvitationPending {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeStore) MarkExpired(_ context.Context, id int64) error {
	return f.setInvitationStatus(id, domain.InvitationExpired)
}

func (f *fakeStore) MarkCancelled(_ context.Context, id int64) error {
	return f.setInvitationStatus(id, domain.InvitationCancelled)
}

func (f *fakeStore) AcceptInvitation(_ context.Context, invitationID int64, userID string, role domain.Role, now time.Time) (*domain.BudgetMember, error) {
	inv, ok := f.invitations[invitationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	switch inv.Status {
	case domain.InvitationAccepted:
		return nil, domain.ErrInvitationAccepted
	case domain.InvitationCancelled:
		return nil, domain.ErrInvitationCancelled
	case domain.InvitationExpired:
		return nil, domain.ErrInvitationExpired
	}
	inv.Status = domain.InvitationAccepted
	accepted := now
	inv.AcceptedAt = &accepted
	if f.members[inv.BudgetID][userID] != nil {
		return nil, domain.ErrAlreadyMember
	}
	return f.putMember(inv.BudgetID, userID, role), nil
}

// === CategoryStorage ===

func (f *fakeStore) CreateCategory(_ context.Context, c *domain.Category) error {
	f.categoryInserts++
	c.ID = f.id()
	stored := *c
	f.categories[c.ID] = &stored
	return nil
}

func (f *fakeStore) ListCategories(_ context.Context, budgetID int64, skip, limit int) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		if c.BudgetID == budgetID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) scopedCategory(budgetID, id int64) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.BudgetID != budgetID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, budgetID, id int64, upd domain.CategoryUpdate) (*domain.Category, error) {
	c, err := f.scopedCategory(budgetID, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.BudgetAmount != nil {
		c.BudgetAmount = *upd.BudgetAmount
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, budgetID, id int64) error {
	if _, err := f.scopedCategory(budgetID, id); err != nil {
		return err
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) BudgetSummary(_ context.Context, budgetID int64, year, month int) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range f.categories {
		if c.BudgetID != budgetID || c.Year != year || c.Month != month {
			continue
		}
		cat := *c
		cat.Subcategories = []domain.Subcategory{}
		for _, s := range f.subcats {
			if s.CategoryID != cat.ID {
				continue
			}
			sub := *s
			sub.Transactions = []domain.Transaction{}
			for _, t := range f.transactions {
				if t.SubcategoryID == sub.ID {
					sub.Transactions = append(sub.Transactions, *t)
				}
			}
			cat.Subcategories = append(cat.Subcategories, sub)
		}
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// === SubcategoryStorage ===

func (f *fakeStore) CreateSubcategory(_ context.Context, budgetID int64, s *domain.Subcategory) error {
	if _, err := f.scopedCategory(budgetID, s.CategoryID); err != nil {
		return err
	}
	s.ID = f.id()
	stored := *s
	f.subcats[s.ID] = &stored
	return nil
}

func (f *fakeStore) ListSubcategories(_ context.Context, budgetID, categoryID int64) ([]domain.Subcategory, error) {
	out := []domain.Subcategory{}
	for _, s := range f.subcats {
		if s.CategoryID != categoryID {
			continue
		}
		if _, err := f.scopedCategory(budgetID, s.CategoryID); err != nil {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) scopedSubcategory(budgetID, id int64) (*domain.Subcategory, error) {
	s, ok := f.subcats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, err := f.scopedCategory(budgetID, s.CategoryID); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *fakeStore) UpdateSubcategory(_ context.Context, budgetID, id int64, upd domain.SubcategoryUpdate) (*domain.Subcategory, error) {
	s, err := f.scopedSubcategory(budgetID, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Allotted != nil {
		s.Allotted = *upd.Allotted
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) DeleteSubcategory(_ context.Context, budgetID, id int64) error {
	if _, err := f.scopedSubcategory(budgetID, id); err != nil {
		return err
	}
	delete(f.subcats, id)
	return nil
}

// === TransactionStorage ===

func (f *fakeStore) CreateTransaction(_ context.Context, budgetID int64, t *domain.Transaction) error {
	f.transactionInserts++
	if _, err := f.scopedSubcategory(budgetID, t.SubcategoryID); err != nil {
		return err
	}
	t.ID = f.id()
	stored := *t
	f.transactions[t.ID] = &stored
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, budgetID, subcategoryID int64) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, t := range f.transactions {
		if t.SubcategoryID != subcategoryID {
			continue
		}
		if _, err := f.scopedSubcategory(budgetID, t.SubcategoryID); err != nil {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, budgetID, id int64, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, err := f.scopedSubcategory(budgetID, t.SubcategoryID); err != nil {
		return nil, err
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, budgetID, id int64) error {
	t, ok := f.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if _, err := f.scopedSubcategory(budgetID, t.SubcategoryID); err != nil {
		return err
	}
	delete(f.transactions, id)
	return nil
}

var (
	_ BudgetStore               = (*fakeStore)(nil)
	_ FinanceStore              = (*fakeStore)(nil)
	_ storage.InvitationStorage = (*fakeStore)(nil)
)

// === helpers ===

// authAs fakes RequireAuth: identity already verified.
func authAs(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.KeyUserID, userID)
		c.Set(middleware.KeyEmail, email)
	}
}

// scopeBudget fakes RequireBudget: the header already resolved.
func scopeBudget(budgetID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.KeyBudgetID, budgetID)
	}
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
