package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fitness-app/fitclient/internal/domain/booking"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

// DashboardView selects one of the dashboard analytics endpoints.
type DashboardView string

const (
	DashboardOverview DashboardView = "overview"
	DashboardMembers  DashboardView = "members"
	DashboardRevenue  DashboardView = "revenue"
	DashboardClasses  DashboardView = "classes"
)

// DashboardViews lists every view in display order.
var DashboardViews = []DashboardView{DashboardOverview, DashboardMembers, DashboardRevenue, DashboardClasses}

// ParseDashboardView validates a view name.
func ParseDashboardView(raw string) (DashboardView, error) {
	for _, v := range DashboardViews {
		if string(v) == raw {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown dashboard view %q", raw)
}

// CSRFHeader carries the per-session booking token.
const CSRFHeader = "X-CSRF-Token"

// Login posts credentials to /auth/login. It does not touch the token or the
// store; SessionService does that once the result is known to be good.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register posts a profile to /auth/register. Same contract as Login.
func (c *Client) Register(ctx context.Context, profile session.Profile) (*session.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", profile)
}

func (c *Client) authenticate(ctx context.Context, endpoint string, payload any) (*session.AuthResult, error) {
	resp, err := c.Call(ctx, endpoint, CallOptions{
		Method:   MethodPost,
		Body:     payload,
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}
	var result session.AuthResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, ErrMissingToken
	}
	return &result, nil
}

// Logout tells the backend to invalidate token. The token is sent in both the
// Authorization header and the body regardless of the in-memory token.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	_, err := c.Call(ctx, "/auth/logout", CallOptions{
		Method:   MethodPost,
		Headers:  map[string]string{"Authorization": "Bearer " + token},
		Body:     map[string]string{"token": token},
		SkipAuth: true,
	})
	return err
}

// Me returns the identity behind the current token. Both {"user": {...}} and a
// bare user object are accepted.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	resp, err := c.Call(ctx, "/auth/me", CallOptions{})
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		User *session.User `json:"user"`
	}
	if err := resp.Decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}
	var bare session.User
	if err := json.Unmarshal(resp.Body, &bare); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &bare, nil
}

// ResetPassword requests a password reset mail for email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	_, err := c.Call(ctx, "/auth/reset-password", CallOptions{
		Method:   MethodPost,
		Body:     map[string]string{"email": email},
		SkipAuth: true,
	})
	return err
}

// UpdatePaymentStatus sets the status of one payment.
func (c *Client) UpdatePaymentStatus(ctx context.Context, id, status string) (*Response, error) {
	return c.Resource(Payments).Update(ctx, id, map[string]string{"status": status})
}

// SendContactMessage posts the public contact form. No token is attached.
func (c *Client) SendContactMessage(ctx context.Context, message any) (*Response, error) {
	return c.Resource(ContactMessages).Create(ctx, message)
}

// CreateBooking posts a class booking. csrfToken, when set, goes in the
// X-CSRF-Token header.
func (c *Client) CreateBooking(ctx context.Context, req booking.Request, csrfToken string) (*Response, error) {
	var headers map[string]string
	if csrfToken != "" {
		headers = map[string]string{CSRFHeader: csrfToken}
	}
	return c.Resource(Bookings).do(ctx, VerbCreate, "", req, headers)
}

// Dashboard fetches one analytics view.
func (c *Client) Dashboard(ctx context.Context, view DashboardView) (*Response, error) {
	if _, err := ParseDashboardView(string(view)); err != nil {
		return nil, err
	}
	return c.Call(ctx, "/dashboard/"+string(view), CallOptions{})
}

// SendClassReminders notifies everyone booked on classID.
func (c *Client) SendClassReminders(ctx context.Context, classID string) (*Response, error) {
	if classID == "" {
		return nil, fmt.Errorf("class id is required")
	}
	return c.Call(ctx, "/notifications/class-reminders/"+url.PathEscape(classID), CallOptions{Method: MethodPost})
}

// SendPaymentReminders notifies members with outstanding payments.
func (c *Client) SendPaymentReminders(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "/notifications/payment-reminders", CallOptions{Method: MethodPost})
}

// SendBulkNotification mails every member.
func (c *Client) SendBulkNotification(ctx context.Context, subject, message string) (*Response, error) {
	return c.Call(ctx, "/notifications/bulk", CallOptions{
		Method: MethodPost,
		Body:   map[string]string{"subject": subject, "message": message},
	})
}

// AdminStatistics fetches the admin statistics summary.
func (c *Client) AdminStatistics(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "/admins/statistics", CallOptions{})
}
