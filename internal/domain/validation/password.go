package validation

import (
	"fmt"
	"regexp"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// PasswordMismatch is reported when the confirmation differs.
const PasswordMismatch = "Passwords do not match"

var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordErrors returns the strength rules password breaks, in a fixed order.
// A strong password returns nil.
func PasswordErrors(password string) []string {
	var errs []string
	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if !upperPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !digitPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one number")
	}
	if !specialPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one special character")
	}
	return errs
}

