// internal/validator/validator.go
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/voidreamer/simple-budget/internal/domain"
)

var Validate *validator.Validate

var nonBlank = regexp.MustCompile(`\S`)

func init() {
	Validate = validator.New()

	// Non-empty after trimming whitespace.
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})

	// One of the storable roles (viewer/editor/admin); "owner" is not
	// storable.
	_ = Validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRole(fl.Field().String())
		return err == nil
	})
}
