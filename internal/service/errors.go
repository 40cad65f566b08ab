// Package service implements the client flows on top of the API client:
// the session lifecycle, page access, class booking and the contact form.
package service

import "errors"

// Service errors.
var (
	// ErrAuthRequired is returned when an action needs a logged-in user and
	// there is none. Nothing is sent to the backend.
	ErrAuthRequired = errors.New("please log in to continue")

	// ErrSessionInvalid is returned when the backend rejects the stored token.
	// The local session has been cleared by the time it is returned.
	ErrSessionInvalid = errors.New("session is no longer valid")

	// ErrTooManyAttempts is returned when the booking attempt limit is hit.
	ErrTooManyAttempts = errors.New("too many booking attempts, please try again later")

	// ErrContactTimeout is returned when the contact form got no answer in time.
	ErrContactTimeout = errors.New("contact message timed out")

	// ErrContactBusy is returned when a contact submission is already in flight.
	ErrContactBusy = errors.New("a message is already being sent")
)
