// internal/middleware/budget.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidreamer/simple-budget/internal/access"
	"github.com/voidreamer/simple-budget/internal/domain"
)

const KeyBudgetID = "budget_id"

// HeaderBudgetID selects which budget the category, subcategory and
// transaction endpoints operate on.
const HeaderBudgetID = "X-Budget-ID"

type BudgetMiddleware struct {
	guard *access.Guard
}

func NewBudgetMiddleware(guard *access.Guard) *BudgetMiddleware {
	return &BudgetMiddleware{guard: guard}
}

// RequireBudget resolves the X-Budget-ID header into a validated
// budget id and stores it in the gin context. Runs after RequireAuth.
func (m *BudgetMiddleware) RequireBudget() gin.HandlerFunc {
	return func(c *gin.Context) {
		budgetID, err := m.guard.CurrentBudget(c.Request.Context(), c.GetHeader(HeaderBudgetID), UserID(c))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrMissingBudgetHeader), errors.Is(err, domain.ErrInvalidBudgetHeader):
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, domain.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a member of this budget"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}
		c.Set(KeyBudgetID, budgetID)
		c.Next()
	}
}

// BudgetID returns the validated budget id placed by RequireBudget.
func BudgetID(c *gin.Context) int64 {
	return c.GetInt64(KeyBudgetID)
}
