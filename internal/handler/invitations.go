// internal/handler/invitations.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidreamer/simple-budget/internal/domain"
	"github.com/voidreamer/simple-budget/internal/invite"
	"github.com/voidreamer/simple-budget/internal/middleware"
)

// InvitationHandler serves the invitation lifecycle endpoints.
type InvitationHandler struct {
	manager *invite.Manager
}

func NewInvitationHandler(manager *invite.Manager) *InvitationHandler {
	return &InvitationHandler{manager: manager}
}

// Create issues an invitation for a budget. The response includes the
// token; delivering it to the invitee happens out of band.
func (h *InvitationHandler) Create(c *gin.Context) {
	budgetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateInvitationRequest
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

	inv, err := h.manager.Create(c.Request.Context(), middleware.UserID(c), budgetID, req.Email, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// List returns a budget's invitations, optionally filtered with
// ?status=pending|accepted|expired|cancelled.
func (h *InvitationHandler) List(c *gin.Context) {
	budgetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var status domain.InvitationStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := domain.ParseInvitationStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}

	invitations, err := h.manager.List(c.Request.Context(), middleware.UserID(c), budgetID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitations)
}

func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manager.Cancel(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Accept redeems a token for the authenticated caller. The token is
// the sole credential besides the bearer identity; the verified email
// claim must match the invitee email.
func (h *InvitationHandler) Accept(c *gin.Context) {
	token := c.Param("token")
	email := middleware.Email(c)
	if email == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token has no email claim"})
		return
	}

	member, err := h.manager.Accept(c.Request.Context(), token, middleware.UserID(c), email)
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("membership granted via invitation", "budget_id", member.BudgetID, "user_id", member.UserID, "role", member.Role)
	c.JSON(http.StatusOK, member)
}

// Validate is public: the invite landing page calls it before the user
// has signed in.
func (h *InvitationHandler) Validate(c *gin.Context) {
	result, err := h.manager.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// === DTO ===

type CreateInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}
