package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fitness-app/fitclient/internal/domain/contact"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

func TestPasswordErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"strong", "Str0ng!pass", nil},
		{"empty", "", []string{
			"Password must be at least 8 characters long",
			"Password must contain at least one uppercase letter",
			"Password must contain at least one number",
			"Password must contain at least one special character",
		}},
		{"no special", "Password1", []string{
			"Password must contain at least one special character",
		}},
		{"short", "A1!a", []string{
			"Password must be at least 8 characters long",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PasswordErrors(tt.password)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PasswordErrors(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}
}

func validRegistration() session.RegistrationForm {
	return session.RegistrationForm{
		Email:           "alice@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		FirstName:       "Alice",
		LastName:        "Smith",
	}
}

func TestValidateRegistration_MismatchReportedFirst(t *testing.T) {
	t.Parallel()

	form := validRegistration()
	form.Password = "weak"
	form.ConfirmPassword = "different"

	err := ValidateRegistration(form)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Passwords do not match" {
		t.Errorf("error = %q, want %q", err.Error(), "Passwords do not match")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Error("errors.Is(err, ErrInvalid) = false")
	}
}

func TestValidateRegistration_StrengthJoinedWithNewlines(t *testing.T) {
	t.Parallel()

	form := validRegistration()
	form.Password = "password"
	form.ConfirmPassword = "password"

	err := ValidateRegistration(form)
	want := "Password must contain at least one uppercase letter\n" +
		"Password must contain at least one number\n" +
		"Password must contain at least one special character"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestValidateRegistration_Fields(t *testing.T) {
	t.Parallel()

	if err := ValidateRegistration(validRegistration()); err != nil {
		t.Fatalf("valid form: %v", err)
	}

	form := validRegistration()
	form.Email = "not-an-email"
	form.FirstName = ""
	err := ValidateRegistration(form)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if got := verr.Field("email"); len(got) != 1 || got[0] != "Please enter a valid email address" {
		t.Errorf("email messages = %q", got)
	}
	if got := verr.Field("firstName"); len(got) != 1 {
		t.Errorf("firstName messages = %q", got)
	}
}

func validContact() contact.Form {
	return contact.Form{
		Name:    "Alice Smith",
		Email:   "alice@example.com",
		Subject: "membership",
		Message: "I would like to know more.",
	}
}

func TestValidateContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*contact.Form)
		field  string
		msg    string
	}{
		{"valid", func(*contact.Form) {}, "", ""},
		{"valid phone", func(f *contact.Form) { f.Phone = "(555) 123-4567" }, "", ""},
		{"name with digits", func(f *contact.Form) { f.Name = "R2D2" }, "name",
			"Please enter a valid name (2-50 characters, letters only)"},
		{"name too short", func(f *contact.Form) { f.Name = "A" }, "name",
			"Please enter a valid name (2-50 characters, letters only)"},
		{"bad email", func(f *contact.Form) { f.Email = "alice@example" }, "email",
			"Please enter a valid email address"},
		{"bad phone", func(f *contact.Form) { f.Phone = "12345" }, "phone",
			"Please enter a valid phone number"},
		{"no subject", func(f *contact.Form) { f.Subject = "" }, "subject",
			"Please select a subject"},
		{"unknown subject", func(f *contact.Form) { f.Subject = "General Inquiry" }, "subject",
			"Please select a subject"},
		{"short message", func(f *contact.Form) { f.Message = "Hi there" }, "message",
			"Please enter your message (minimum 10 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validContact()
			tt.modify(&form)
			err := ValidateContact(form)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("ValidateContact() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateContact() = %v, want *ValidationError", err)
			}
			got := verr.Field(tt.field)
			if len(got) != 1 || got[0] != tt.msg {
				t.Errorf("Field(%q) = %q, want [%q]", tt.field, got, tt.msg)
			}
		})
	}
}

func TestValidateContact_AllFieldsReported(t *testing.T) {
	t.Parallel()

	err := ValidateContact(contact.Form{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("len(Errors) = %d, want 4 (phone is optional): %v", len(verr.Errors), verr.Errors)
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	if got := StripTags("<b>hello</b>"); got != "bhello/b" {
		t.Errorf("StripTags = %q, want %q", got, "bhello/b")
	}
}
