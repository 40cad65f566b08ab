// Package booking defines the payloads sent when a member books a class.
package booking

import (
	"fmt"
	"strconv"
	"time"
)

// Status values the backend accepts for bookings and payments.
const (
	StatusPending = "PENDING"
)

// Payment defaults applied when a booking also records a payment.
const (
	DefaultAmount        = 25.00
	DefaultPaymentMethod = "CASH"
)

// Request is the body of POST /class-bookings.
type Request struct {
	FitnessClassID int64  `json:"fitnessClassId"`
	MemberID       int64  `json:"memberId"`
	Status         string `json:"status"`
	BookingDate    string `json:"bookingDate"`
	CSRFToken      string `json:"csrfToken,omitempty"`
}

// PaymentRequest is the body of POST /payments created alongside a booking.
type PaymentRequest struct {
	MemberID       int64   `json:"memberId"`
	FitnessClassID int64   `json:"fitnessClassId"`
	Amount         float64 `json:"amount"`
	PaymentMethod  string  `json:"paymentMethod"`
	Status         string  `json:"status"`
	PaymentDate    string  `json:"paymentDate"`
	Description    string  `json:"description"`
}

// ParseID converts a string identifier to the numeric form the booking
// endpoints expect.
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric", field, raw)
	}
	return id, nil
}

// NewRequest builds a PENDING booking dated now.
func NewRequest(classID, memberID int64, csrfToken string, now time.Time) Request {
	return Request{
		FitnessClassID: classID,
		MemberID:       memberID,
		Status:         StatusPending,
		BookingDate:    now.UTC().Format(time.RFC3339Nano),
		CSRFToken:      csrfToken,
	}
}

// NewPayment builds the PENDING payment record for a booked class.
func NewPayment(classID, memberID int64, className string, amount float64, now time.Time) PaymentRequest {
	return PaymentRequest{
		MemberID:       memberID,
		FitnessClassID: classID,
		Amount:         amount,
		PaymentMethod:  DefaultPaymentMethod,
		Status:         StatusPending,
		PaymentDate:    now.UTC().Format(time.RFC3339Nano),
		Description:    "Payment for " + className,
	}
}
