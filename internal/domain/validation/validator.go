package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fitness-app/fitclient/internal/domain/contact"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]{10,15}$`)
)

// contactMessages are shown for a failed contact form field.
var contactMessages = map[string]string{
	"name":    "Please enter a valid name (2-50 characters, letters only)",
	"email":   "Please enter a valid email address",
	"phone":   "Please enter a valid phone number",
	"subject": "Please select a subject",
	"message": "Please enter your message (minimum 10 characters)",
}

// registrationMessages are shown for a failed registration field.
var registrationMessages = map[string]string{
	"email":     "Please enter a valid email address",
	"firstName": "Please enter your first name",
	"lastName":  "Please enter your last name",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	validateErr  error
)

// instance returns the shared validator with the form rules registered.
func instance() (*validator.Validate, error) {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		validateErr = RegisterCustomValidators(v)
		validate = v
	})
	return validate, validateErr
}

// RegisterCustomValidators registers the contact form rules.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]*regexp.Regexp{
		"contact_name":  namePattern,
		"contact_email": emailPattern,
		"contact_phone": phonePattern,
	}
	for tag, re := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	if err := v.RegisterValidation("contact_subject", func(fl validator.FieldLevel) bool {
		return slices.Contains(contact.Subjects, fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register contact_subject validator: %w", err)
	}
	return nil
}

// jsonFieldName reports fields under their JSON names.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ValidateContact checks every contact form field and returns all failures.
func ValidateContact(form contact.Form) error {
	return validateStruct(form, contactMessages)
}

// ValidateRegistration checks the registration form. A password mismatch is
// reported alone; otherwise strength failures come first, then field errors.
func ValidateRegistration(form session.RegistrationForm) error {
	if form.Password != form.ConfirmPassword {
		return NewValidationError("confirmPassword", PasswordMismatch)
	}
	verr := &ValidationError{}
	for _, msg := range PasswordErrors(form.Password) {
		verr.add("password", msg)
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return validateStruct(form, registrationMessages)
}

func validateStruct(s any, messages map[string]string) error {
	v, err := instance()
	if err != nil {
		return err
	}
	err = v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		}
		verr.add(fe.Field(), msg)
	}
	return verr.orNil()
}
