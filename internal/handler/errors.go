// internal/handler/errors.go
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	val "github.com/voidreamer/simple-budget/internal/validator"

	"github.com/voidreamer/simple-budget/internal/domain"
)

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept server-side.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvitationExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrDuplicateInvitation),
		errors.Is(err, domain.ErrInvitationAccepted),
		errors.Is(err, domain.ErrInvitationCancelled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var errs []string
		for _, e := range err.(validator.ValidationErrors) {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "role":
		return fmt.Sprintf("%s must be one of viewer, editor, admin", e.Field())
	case "gte":
		return fmt.Sprintf("%s must be non-negative", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
