package dto

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a gin binding error into the standard error
// envelope and writes a 400 response.
func HandleValidationError(c *gin.Context, err error) {
	validationErrors := NewValidationErrors()

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			validationErrors.AddError(fieldName(fe), validationMessage(fe))
		}
	} else {
		validationErrors.AddError("", "invalid request body")
	}

	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error: NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").
			WithDetails(validationErrors.Errors),
		Timestamp: time.Now(),
	})
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation on '%s'", fe.Tag())
	}
}
