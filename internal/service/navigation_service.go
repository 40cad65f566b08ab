package service

import (
	"context"
	"log/slog"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// AccessPolicy decides whether an authenticated user may open a page.
type AccessPolicy interface {
	// HasRule reports whether page is guarded.
	HasRule(page session.Page) bool

	// Allow evaluates the page's rule for req.
	Allow(ctx context.Context, req session.AccessRequest) (bool, error)
}

// Navigation outcomes.
const (
	ReasonPublic             = "public"
	ReasonAllowed            = "allowed"
	ReasonUnauthenticated    = "unauthenticated"
	ReasonVerificationFailed = "verification failed"
	ReasonDenied             = "denied"
)

// Decision is where a navigation lands and why.
type Decision struct {
	Page   session.Page
	Reason string
}

// Redirected reports whether the visitor was sent somewhere else.
func (d Decision) Redirected(requested session.Page) bool {
	return d.Page != requested
}

// NavigationService guards the protected pages.
type NavigationService struct {
	sessions *SessionService
	policy   AccessPolicy
	logger   *slog.Logger
}

// NewNavigationService creates a NavigationService.
func NewNavigationService(sessions *SessionService, policy AccessPolicy, logger *slog.Logger) *NavigationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigationService{sessions: sessions, policy: policy, logger: logger}
}

// Open decides where a visit to page lands. Public pages are returned as is.
// A protected page requires a token the backend still accepts and a rule that
// allows the verified role; anything else lands on the memberships page.
func (n *NavigationService) Open(ctx context.Context, page session.Page) Decision {
	if !session.IsProtected(page) && !n.policy.HasRule(page) {
		return Decision{Page: page, Reason: ReasonPublic}
	}

	if !n.sessions.IsAuthenticated() {
		return Decision{Page: session.PageMemberships, Reason: ReasonUnauthenticated}
	}

	user, err := n.sessions.VerifyToken(ctx)
	if err != nil {
		n.logger.Info("redirecting after failed verification", "page", page, "error", err)
		return Decision{Page: session.PageMemberships, Reason: ReasonVerificationFailed}
	}

	allowed, err := n.policy.Allow(ctx, session.AccessRequest{
		Role:          user.ParsedRole(),
		Page:          page,
		UserID:        user.ID.String(),
		Authenticated: true,
	})
	if err != nil {
		n.logger.Error("access rule evaluation failed", "page", page, "error", err)
		return Decision{Page: session.PageMemberships, Reason: ReasonDenied}
	}
	if !allowed {
		return Decision{Page: session.PageMemberships, Reason: ReasonDenied}
	}
	return Decision{Page: page, Reason: ReasonAllowed}
}
