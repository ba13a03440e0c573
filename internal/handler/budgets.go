// internal/handler/budgets.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voidreamer/simple-budget/internal/access"
	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/middleware"
	"github.com/voidreamer/simple-budget/internal/storage"
)

type BudgetStore interface {
	storage.BudgetStorage
	storage.MemberStorage
}

// BudgetHandler serves budget and membership endpoints.
type BudgetHandler struct {
	store BudgetStore
	guard *access.Guard
}

func NewBudgetHandler(store BudgetStore, guard *access.Guard) *BudgetHandler {
	return &BudgetHandler{store: store, guard: guard}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return id, true
}

// Create makes a budget with the caller as owner and admin member.
func (h *BudgetHandler) Create(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	slog.Info("creating budget", "name", req.Name, "owner_id", userID)

	budget, err := h.store.CreateBudget(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

// List returns every budget the caller is a member of.
func (h *BudgetHandler) List(c *gin.Context) {
	budgets, err := h.store.ListBudgets(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *BudgetHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	budget, err := h.guard.Authorize(c.Request.Context(), middleware.UserID(c), id, domain.MemberRoles...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

// Rename requires an admin role or ownership.
func (h *BudgetHandler) Rename(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.guard.Authorize(c.Request.Context(), middleware.UserID(c), id, domain.ManageRoles...); err != nil {
		respondError(c, err)
		return
	}

	budget, err := h.store.RenameBudget(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

// Delete is owner-only; everything under the budget goes with it.
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)
	if _, err := h.guard.Authorize(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	slog.Info("deleting budget", "budget_id", id, "owner_id", userID)
	if err := h.store.DeleteBudget(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *BudgetHandler) ListMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.guard.Authorize(c.Request.Context(), middleware.UserID(c), id, domain.MemberRoles...); err != nil {
		respondError(c, err)
		return
	}

	members, err := h.store.ListMembers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddMember grants access directly by user id, without an invitation.
// Admin/owner only; duplicates are rejected.
func (h *BudgetHandler) AddMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := domain.DefaultRole
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	if _, err := h.guard.Authorize(c.Request.Context(), middleware.UserID(c), id, domain.ManageRoles...); err != nil {
		respondError(c, err)
		return
	}

	member, err := h.store.AddMember(c.Request.Context(), id, req.UserID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *BudgetHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberUserID := c.Param("userID")
	if _, err := h.guard.Authorize(c.Request.Context(), middleware.UserID(c), id, domain.ManageRoles...); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.RemoveMember(c.Request.Context(), id, memberUserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// === DTO ===

type CreateBudgetRequest struct {
	Name string `json:"name" validate:"required,notblank"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,notblank"`
	Role   string `json:"role" validate:"omitempty,role"`
}
