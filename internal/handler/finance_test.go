// internal/handler/finance_test.go
package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidreamer/simple-budget/internal/domain"
)

func newFinanceRouter(store *fakeStore, budgetID int64) *gin.Engine {
	h := NewFinanceHandler(store)
	r := gin.New()
	r.Use(scopeBudget(budgetID))
	r.POST("/categories", h.CreateCategory)
	r.GET("/categories", h.ListCategories)
	r.PUT("/categories/:id", h.UpdateCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)
	r.POST("/subcategories", h.CreateSubcategory)
	r.GET("/subcategories", h.ListSubcategories)
	r.PUT("/subcategories/:id", h.UpdateSubcategory)
	r.DELETE("/subcategories/:id", h.DeleteSubcategory)
	r.POST("/transactions", h.CreateTransaction)
	r.GET("/transactions", h.ListTransactions)
	r.PUT("/transactions/:id", h.UpdateTransaction)
	r.DELETE("/transactions/:id", h.DeleteTransaction)
	r.GET("/budget-summary/:year/:month", h.BudgetSummary)
	return r
}

func (f *fakeStore) seedCategory(budgetID int64, name string, year, month int) *domain.Category {
	c := &domain.Category{ID: f.id(), BudgetID: budgetID, Name: name, Year: year, Month: month}
	f.categories[c.ID] = c
	return c
}

func (f *fakeStore) seedSubcategory(categoryID int64, name string) *domain.Subcategory {
	s := &domain.Subcategory{ID: f.id(), CategoryID: categoryID, Name: name}
	f.subcats[s.ID] = s
	return s
}

func TestCreateCategoryDefaultsToCurrentPeriod(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/categories", gin.H{"name": "Groceries", "budget": 500})
	require.Equal(t, http.StatusOK, w.Code)

	category := decodeBody[domain.Category](t, w)
	now := time.Now()
	assert.Equal(t, int64(1), category.BudgetID)
	assert.Equal(t, 500.0, category.BudgetAmount)
	assert.Equal(t, now.Year(), category.Year)
	assert.Equal(t, int(now.Month()), category.Month)
}

func TestCreateCategoryExplicitPeriod(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/categories",
		gin.H{"name": "Groceries", "budget": 500, "year": 2025, "month": 3})
	require.Equal(t, http.StatusOK, w.Code)

	category := decodeBody[domain.Category](t, w)
	assert.Equal(t, 2025, category.Year)
	assert.Equal(t, 3, category.Month)
}

func TestCreateCategoryRejectsNegativeBudget(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/categories", gin.H{"name": "Groceries", "budget": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.categoryInserts, "rejected before reaching storage")
}

func TestCreateCategoryRejectsBadMonth(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/categories", gin.H{"name": "Groceries", "month": 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCategoryScopedToBudget(t *testing.T) {
	store := newFakeStore()
	foreign := store.seedCategory(2, "Other", 2025, 3)
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPut, "/categories/1", gin.H{"name": "Renamed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Other", store.categories[foreign.ID].Name)
}

func TestUpdateCategoryPartial(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(1, "Groceries", 2025, 3)
	c.BudgetAmount = 500
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPut, "/categories/1", gin.H{"budget": 750})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeBody[domain.Category](t, w)
	assert.Equal(t, "Groceries", updated.Name)
	assert.Equal(t, 750.0, updated.BudgetAmount)
}

func TestListCategoriesPagination(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		store.seedCategory(1, "Cat", 2025, 3)
	}
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodGet, "/categories?skip=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Category](t, w), 2)
}

func TestCreateSubcategoryUnknownCategory(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/subcategories",
		gin.H{"name": "Produce", "allotted": 100, "category_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSubcategoriesRequiresCategoryID(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodGet, "/subcategories", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTransactionRejectsNegativeAmount(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(1, "Groceries", 2025, 3)
	s := store.seedSubcategory(c.ID, "Produce")
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/transactions",
		gin.H{"description": "milk", "amount": -3.50, "subcategory_id": s.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.transactionInserts, "rejected before reaching storage")
}

func TestCreateTransactionDefaultsDate(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(1, "Groceries", 2025, 3)
	s := store.seedSubcategory(c.ID, "Produce")
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/transactions",
		gin.H{"description": "milk", "amount": 3.50, "subcategory_id": s.ID})
	require.Equal(t, http.StatusOK, w.Code)

	transaction := decodeBody[domain.Transaction](t, w)
	assert.Equal(t, 3.50, transaction.Amount)
	assert.WithinDuration(t, time.Now(), transaction.Date, time.Minute)
}

func TestCreateTransactionForeignSubcategory(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(2, "Other", 2025, 3)
	s := store.seedSubcategory(c.ID, "Foreign")
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/transactions",
		gin.H{"description": "milk", "amount": 3.50, "subcategory_id": s.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBudgetSummaryMonthName(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(1, "Groceries", 2025, 3)
	s := store.seedSubcategory(c.ID, "Produce")
	tx := &domain.Transaction{ID: store.id(), SubcategoryID: s.ID, Description: "milk", Amount: 3.50}
	store.transactions[tx.ID] = tx
	store.seedCategory(1, "Rent", 2025, 4)
	r := newFinanceRouter(store, 1)

	// Month as a number and as an English name, in any letter case,
	// resolve the same way.
	for _, path := range []string{"/budget-summary/2025/3", "/budget-summary/2025/March", "/budget-summary/2025/march"} {
		w := doJSON(r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)

		summary := decodeBody[[]domain.Category](t, w)
		require.Len(t, summary, 1, path)
		assert.Equal(t, "Groceries", summary[0].Name)
		require.Len(t, summary[0].Subcategories, 1)
		require.Len(t, summary[0].Subcategories[0].Transactions, 1)
		assert.Equal(t, "milk", summary[0].Subcategories[0].Transactions[0].Description)
	}
}

func TestBudgetSummaryBadInput(t *testing.T) {
	store := newFakeStore()
	r := newFinanceRouter(store, 1)

	w := doJSON(r, http.MethodGet, "/budget-summary/abc/3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/budget-summary/2025/Smarch", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteTransactionScopedToBudget(t *testing.T) {
	store := newFakeStore()
	c := store.seedCategory(1, "Groceries", 2025, 3)
	s := store.seedSubcategory(c.ID, "Produce")
	tx := &domain.Transaction{ID: store.id(), SubcategoryID: s.ID, Description: "milk", Amount: 3.50}
	store.transactions[tx.ID] = tx

	w := doJSON(newFinanceRouter(store, 2), http.MethodDelete, "/transactions/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, store.transactions, tx.ID)

	w = doJSON(newFinanceRouter(store, 1), http.MethodDelete, "/transactions/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.transactions, tx.ID)
}
