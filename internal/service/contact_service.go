package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
	"github.com/fitness-app/fitclient/internal/domain/contact"
	"github.com/fitness-app/fitclient/internal/domain/validation"
)

// DefaultContactTimeout bounds one contact submission.
const DefaultContactTimeout = 10 * time.Second

// ContactService sends the public contact form.
type ContactService struct {
	client  *api.Client
	timeout time.Duration
	logger  *slog.Logger
	busy    atomic.Bool
}

// NewContactService creates a ContactService. A zero timeout means
// DefaultContactTimeout.
func NewContactService(client *api.Client, timeout time.Duration, logger *slog.Logger) *ContactService {
	if timeout <= 0 {
		timeout = DefaultContactTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{client: client, timeout: timeout, logger: logger}
}

// Busy reports whether a submission is in flight.
func (c *ContactService) Busy() bool {
	return c.busy.Load()
}

// Submit validates form, strips markup from the message and sends it without
// a token. Only one submission runs at a time. If the backend does not answer
// within the timeout ErrContactTimeout is returned. Busy is false again by
// the time Submit returns, whatever the outcome.
func (c *ContactService) Submit(ctx context.Context, form contact.Form) error {
	if err := validation.ValidateContact(form); err != nil {
		return err
	}
	form.Message = validation.StripTags(form.Message)

	if !c.busy.CompareAndSwap(false, true) {
		return ErrContactBusy
	}
	defer c.busy.Store(false)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.SendContactMessage(ctx, form)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("contact message timed out", "timeout", c.timeout)
			return fmt.Errorf("%w after %s: %w", ErrContactTimeout, c.timeout, err)
		}
		c.logger.Error("contact message failed", "error", err)
		return err
	}
	c.logger.Info("contact message sent", "subject", form.Subject)
	return nil
}
