// internal/validator/validator.go
package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var last4Re = regexp.MustCompile(`^\d{4}$`)

func init() {
	Validate = validator.New()

	// Card expiry: "2028-06"
	_ = Validate.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		_, err := time.Parse("2006-01", s)
		return err == nil
	})

	// Not empty and not only whitespace
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(regexp.MustCompile(`\S`).FindString(s)) > 0
	})

	// Exactly four digits
	_ = Validate.RegisterValidation("last4", func(fl validator.FieldLevel) bool {
		return last4Re.MatchString(fl.Field().String())
	})
}
