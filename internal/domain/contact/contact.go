// Package contact defines the public contact form.
package contact

// Subjects offered by the contact form.
var Subjects = []string{"general", "membership", "classes", "personal-training", "feedback"}

// Form is the body of POST /contact-messages.
type Form struct {
	Name    string `json:"name" validate:"contact_name"`
	Email   string `json:"email" validate:"contact_email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,contact_phone"`
	Subject string `json:"subject" validate:"required,contact_subject"`
	Message string `json:"message" validate:"min=10"`
}
