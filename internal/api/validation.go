package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"inmobiliaria/server/internal/models"
)

// ValidationErrorDetail describes one invalid request field
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var (
	validationsOnce sync.Once
	validationsErr  error
)

// registerValidations teaches gin's validator the custom tags and makes it
// report fields by their JSON name.
func registerValidations() error {
	validationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validationsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		validationsErr = addValidations(v)
	})
	return validationsErr
}

func addValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return models.SlugPattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register slug validation: %w", err)
	}
	return nil
}

// formatValidationErrors converts validator errors into a user-friendly format
func formatValidationErrors(errs validator.ValidationErrors) []ValidationErrorDetail {
	details := make([]ValidationErrorDetail, 0, len(errs))
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("Field '%s' must be a valid URL", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		case "slug":
			message = fmt.Sprintf("Field '%s' may only contain lowercase letters, digits and dashes", err.Field())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

type normalizer interface {
	Normalize()
}

// bindJSON decodes the request body into obj, normalizes it and validates
// it. On failure the 400 response is written and false returned.
func (h *Handler) bindJSON(c *gin.Context, obj any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(obj); err != nil {
		h.logger.WithError(err).Debug("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}

	if n, ok := obj.(normalizer); ok {
		n.Normalize()
	}

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Validation failed",
				"details": formatValidationErrors(validationErrs),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// fieldError answers 400 with a single detail, shaped like validation failures
func fieldError(c *gin.Context, field, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": []ValidationErrorDetail{{Field: field, Message: message, Code: code}},
	})
}
