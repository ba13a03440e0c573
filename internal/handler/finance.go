// internal/handler/finance.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/middleware"
	"github.com/voidreamer/simple-budget/internal/storage"
)

type FinanceStore interface {
	storage.CategoryStorage
	storage.SubcategoryStorage
	storage.TransactionStorage
}

// FinanceHandler serves the budget-scoped category, subcategory and
// transaction endpoints. The budget id comes from the X-Budget-ID
// middleware; every storage call resolves entities through the
// ownership chain so foreign ids surface as 404.
type FinanceHandler struct {
	store FinanceStore
}

func NewFinanceHandler(store FinanceStore) *FinanceHandler {
	return &FinanceHandler{store: store}
}

// === Categories ===

func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	category := &domain.Category{
		BudgetID: middleware.BudgetID(c),
		Name:     req.Name,
		// "budget" in the request body is the monetary allotment, not
		// the budget container.
		BudgetAmount:  req.Budget,
		Year:          now.Year(),
		Month:         int(now.Month()),
		Subcategories: []domain.Subcategory{},
	}
	if req.Year != nil {
		category.Year = *req.Year
	}
	if req.Month != nil {
		category.Month = *req.Month
	}

	slog.Info("creating category", "name", req.Name, "budget_id", category.BudgetID)
	if err := h.store.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *FinanceHandler) ListCategories(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	categories, err := h.store.ListCategories(c.Request.Context(), middleware.BudgetID(c), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *FinanceHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.store.UpdateCategory(c.Request.Context(), middleware.BudgetID(c), id, domain.CategoryUpdate{
		Name:         req.Name,
		BudgetAmount: req.Budget,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *FinanceHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	slog.Info("deleting category", "category_id", id, "budget_id", middleware.BudgetID(c))
	if err := h.store.DeleteCategory(c.Request.Context(), middleware.BudgetID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// === Subcategories ===

func (h *FinanceHandler) CreateSubcategory(c *gin.Context) {
	var req CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subcategory := &domain.Subcategory{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Allotted:     req.Allotted,
		Transactions: []domain.Transaction{},
	}
	if err := h.store.CreateSubcategory(c.Request.Context(), middleware.BudgetID(c), subcategory); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subcategory)
}

func (h *FinanceHandler) ListSubcategories(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Query("category_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id query param required"})
		return
	}

	subcategories, err := h.store.ListSubcategories(c.Request.Context(), middleware.BudgetID(c), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subcategories)
}

func (h *FinanceHandler) UpdateSubcategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subcategory, err := h.store.UpdateSubcategory(c.Request.Context(), middleware.BudgetID(c), id, domain.SubcategoryUpdate{
		Name:     req.Name,
		Allotted: req.Allotted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subcategory)
}

func (h *FinanceHandler) DeleteSubcategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteSubcategory(c.Request.Context(), middleware.BudgetID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// === Transactions ===

func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction := &domain.Transaction{
		SubcategoryID: req.SubcategoryID,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          time.Now(),
	}
	if req.Date != nil {
		transaction.Date = *req.Date
	}

	slog.Info("creating transaction", "description", req.Description, "amount", req.Amount)
	if err := h.store.CreateTransaction(c.Request.Context(), middleware.BudgetID(c), transaction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	subcategoryID, err := strconv.ParseInt(c.Query("subcategory_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subcategory_id query param required"})
		return
	}

	transactions, err := h.store.ListTransactions(c.Request.Context(), middleware.BudgetID(c), subcategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *FinanceHandler) UpdateTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := h.store.UpdateTransaction(c.Request.Context(), middleware.BudgetID(c), id, domain.TransactionUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTransaction(c.Request.Context(), middleware.BudgetID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// === Summary ===

// BudgetSummary returns the month's categories with nested
// subcategories and transactions. The month segment accepts a number
// or an English name ("March").
func (h *FinanceHandler) BudgetSummary(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}
	month, err := domain.MonthNumber(c.Param("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	categories, err := h.store.BudgetSummary(c.Request.Context(), middleware.BudgetID(c), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// === DTO ===

type CreateCategoryRequest struct {
	Name   string  `json:"name" validate:"required,notblank"`
	Budget float64 `json:"budget" validate:"gte=0"`
	Year   *int    `json:"year" validate:"omitempty,gte=2000"`
	Month  *int    `json:"month" validate:"omitempty,gte=1,lte=12"`
}

type UpdateCategoryRequest struct {
	Name   *string  `json:"name" validate:"omitempty,notblank"`
	Budget *float64 `json:"budget" validate:"omitempty,gte=0"`
}

type CreateSubcategoryRequest struct {
	Name       string  `json:"name" validate:"required,notblank"`
	Allotted   float64 `json:"allotted" validate:"gte=0"`
	CategoryID int64   `json:"category_id" validate:"required"`
}

type UpdateSubcategoryRequest struct {
	Name     *string  `json:"name" validate:"omitempty,notblank"`
	Allotted *float64 `json:"allotted" validate:"omitempty,gte=0"`
}

type CreateTransactionRequest struct {
	Description   string     `json:"description" validate:"required,notblank"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Date          *time.Time `json:"date"`
	SubcategoryID int64      `json:"subcategory_id" validate:"required"`
}

type UpdateTransactionRequest struct {
	Description *string    `json:"description" validate:"omitempty,notblank"`
	Amount      *float64   `json:"amount" validate:"omitempty,gte=0"`
	Date        *time.Time `json:"date"`
}
