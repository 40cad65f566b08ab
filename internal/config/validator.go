package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/cel"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

// RegisterCustomValidators registers the fitclient-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	if err := v.RegisterValidation("access_page", validateAccessPage); err != nil {
		return fmt.Errorf("failed to register access_page validator: %w", err)
	}
	return nil
}

// validateDuration accepts a positive Go duration string such as "10s".
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// validateAccessPage accepts a known page name.
func validateAccessPage(fl validator.FieldLevel) bool {
	_, err := session.ParsePage(fl.Field().String())
	return err == nil
}

// Validate validates the Config using struct tags, then compiles every access
// rule override. Returns an error with actionable messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateAccessRules(); err != nil {
		return err
	}

	return nil
}

// validateAccessRules compiles the overrides so a typo fails at startup
// rather than on the first visit to the page.
func (c *Config) validateAccessRules() error {
	if len(c.AccessRules) == 0 {
		return nil
	}
	if _, err := cel.NewAccessRules(c.AccessRules); err != nil {
		return fmt.Errorf("access_rules: %w", err)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "duration":
		return fmt.Sprintf("%s must be a positive duration such as \"10s\"", field)
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone such as \"Europe/London\"", field)
	case "access_page":
		return fmt.Sprintf("%s: unknown page %q", field, e.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
