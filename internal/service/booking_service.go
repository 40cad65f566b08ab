package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
	"github.com/fitness-app/fitclient/internal/domain/booking"
	"github.com/fitness-app/fitclient/internal/domain/ratelimit"
	"github.com/fitness-app/fitclient/internal/domain/schedule"
	"github.com/fitness-app/fitclient/internal/domain/validation"
)

// BookingConfig tunes the booking flow.
type BookingConfig struct {
	// Limit caps booking attempts per member.
	Limit ratelimit.Config

	// RecordPayment creates a PENDING payment after each booking.
	RecordPayment bool

	// PaymentAmount is the amount of that payment.
	PaymentAmount float64

	// Location is the zone class times without an offset are read in.
	Location *time.Location
}

// DefaultBookingConfig allows 5 attempts per minute and records a 25.00 payment.
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		Limit:         ratelimit.PerMinute(5),
		RecordPayment: true,
		PaymentAmount: booking.DefaultAmount,
		Location:      time.Local,
	}
}

// BookingResult is the outcome of a successful booking.
type BookingResult struct {
	Request         booking.Request
	Response        *api.Response
	PaymentRecorded bool
}

// BookingService books classes for the logged-in member.
type BookingService struct {
	client   *api.Client
	sessions *SessionService
	limiter  ratelimit.Limiter
	cfg      BookingConfig
	logger   *slog.Logger

	csrfToken string
	now       func() time.Time
}

// NewBookingService creates a BookingService with a fresh CSRF token.
func NewBookingService(client *api.Client, sessions *SessionService, limiter ratelimit.Limiter, cfg BookingConfig, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &BookingService{
		client:    client,
		sessions:  sessions,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
		csrfToken: uuid.NewString(),
		now:       time.Now,
	}
}

// CSRFToken returns the token sent with every booking from this service.
func (b *BookingService) CSRFToken() string {
	return b.csrfToken
}

// Book books classID for the current user. It is refused locally with
// ErrAuthRequired when nobody is logged in and with ErrTooManyAttempts when
// the attempt limit is hit. A failed payment record is logged, not returned.
func (b *BookingService) Book(ctx context.Context, classID, className string) (*BookingResult, error) {
	if !b.sessions.IsAuthenticated() {
		return nil, ErrAuthRequired
	}
	user := b.sessions.CurrentUser()
	if user == nil || user.ID == "" {
		return nil, ErrAuthRequired
	}

	limit, err := b.limiter.Allow(ctx, ratelimit.FormatKey(ratelimit.KeyTypeBooking, user.ID.String()), b.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("check booking limit: %w", err)
	}
	if !limit.Allowed {
		b.logger.Warn("booking attempt limit reached", "user_id", user.ID, "retry_after", limit.RetryAfter)
		return nil, fmt.Errorf("%w (retry in %s)", ErrTooManyAttempts, limit.RetryAfter.Round(time.Second))
	}

	classID = validation.StripTags(strings.TrimSpace(classID))
	className = validation.StripTags(strings.TrimSpace(className))

	cid, err := booking.ParseID("fitnessClassId", classID)
	if err != nil {
		return nil, validation.NewValidationError("fitnessClassId", err.Error())
	}
	mid, err := booking.ParseID("memberId", user.ID.String())
	if err != nil {
		return nil, err
	}

	now := b.now()
	req := booking.NewRequest(cid, mid, b.csrfToken, now)
	resp, err := b.client.CreateBooking(ctx, req, b.csrfToken)
	if err != nil {
		return nil, err
	}
	b.logger.Info("class booked", "class_id", cid, "user_id", mid)

	result := &BookingResult{Request: req, Response: resp}
	if b.cfg.RecordPayment {
		if className == "" {
			className = classID
		}
		payment := booking.NewPayment(cid, mid, className, b.cfg.PaymentAmount, now)
		if _, err := b.client.Resource(api.Payments).Create(ctx, payment); err != nil {
			b.logger.Warn("failed to create payment record", "class_id", cid, "error", err)
		} else {
			result.PaymentRecorded = true
		}
	}
	return result, nil
}

// Schedule loads every class and groups them by weekday. Classes with an
// unreadable start time are logged and left out.
func (b *BookingService) Schedule(ctx context.Context) ([]schedule.Day, error) {
	resp, err := b.client.Resource(api.Classes).List(ctx)
	if err != nil {
		return nil, err
	}
	var classes []schedule.Class
	if err := resp.Decode(&classes); err != nil {
		return nil, err
	}

	days, skipped := schedule.Week(classes, b.cfg.Location)
	for _, c := range skipped {
		b.logger.Warn("skipping class with invalid start time", "class_id", c.ID, "start_time", c.StartTime)
	}
	return days, nil
}
