// internal/handler/common.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	val "cardwise/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// userFromContext reads the user id set by the auth middleware. A missing or
// mistyped value means the middleware was not applied; the handler aborts
// with a 500.
func userFromContext(c *gin.Context) (int64, bool) {
	userIDVal, ok := c.Get("user_id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user_id missing"})
		return 0, false
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
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
	case "yearmonth":
		return fmt.Sprintf("%s must be in YYYY-MM format", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "last4":
		return fmt.Sprintf("%s must be exactly four digits", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 100", e.Field())
	case "min":
		return fmt.Sprintf("%s is too short", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
