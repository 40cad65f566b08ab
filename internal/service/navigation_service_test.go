package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/cel"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

func newNavigation(t *testing.T, env *testEnv) *NavigationService {
	t.Helper()
	rules, err := cel.NewAccessRules(nil)
	if err != nil {
		t.Fatalf("NewAccessRules() error: %v", err)
	}
	return NewNavigationService(env.sessions, rules, testLogger())
}

func meAs(role string) http.HandlerFunc {
	return respond(http.StatusOK, map[string]any{"user": map[string]any{"id": 7, "role": role}})
}

func TestNavigationService_PublicPages(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	nav := newNavigation(t, env)

	for _, page := range []session.Page{session.PageHome, session.PageClasses, session.PageMemberships, session.PageContact} {
		d := nav.Open(context.Background(), page)
		if d.Page != page || d.Reason != ReasonPublic {
			t.Errorf("Open(%s) = %+v, want public", page, d)
		}
	}
	if n := env.backend.requestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestNavigationService_UnauthenticatedIsRedirected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	nav := newNavigation(t, env)

	d := nav.Open(context.Background(), session.PageTracker)
	if !d.Redirected(session.PageTracker) || d.Page != session.PageMemberships || d.Reason != ReasonUnauthenticated {
		t.Errorf("Open(tracker) = %+v", d)
	}
	if n := env.backend.requestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestNavigationService_RoleRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role   string
		page   session.Page
		want   session.Page
		reason string
	}{
		{"ROLE_MEMBER", session.PageTracker, session.PageTracker, ReasonAllowed},
		{"ROLE_TRAINER", session.PageTracker, session.PageTracker, ReasonAllowed},
		{"ROLE_MEMBER", session.PageDashboard, session.PageMemberships, ReasonDenied},
		{"ROLE_ADMIN", session.PageDashboard, session.PageDashboard, ReasonAllowed},
		{"ROLE_JANITOR", session.PageTracker, session.PageMemberships, ReasonDenied},
	}
	for _, tt := range tests {
		t.Run(tt.role+"/"+string(tt.page), func(t *testing.T) {
			t.Parallel()
			env := loggedIn(t)
			env.backend.handle(http.MethodGet, "/auth/me", meAs(tt.role))
			nav := newNavigation(t, env)

			d := nav.Open(context.Background(), tt.page)
			if d.Page != tt.want || d.Reason != tt.reason {
				t.Errorf("Open(%s) = %+v, want {%s %s}", tt.page, d, tt.want, tt.reason)
			}
			if !env.sessions.IsAuthenticated() {
				t.Error("a denied page must not end the session")
			}
		})
	}
}

func TestNavigationService_RejectedTokenLogsOut(t *testing.T) {
	t.Parallel()
	env := loggedIn(t)
	env.backend.handle(http.MethodGet, "/auth/me",
		respond(http.StatusUnauthorized, map[string]string{"message": "Token expired"}))
	nav := newNavigation(t, env)

	d := nav.Open(context.Background(), session.PageTracker)
	if d.Page != session.PageMemberships || d.Reason != ReasonVerificationFailed {
		t.Errorf("Open(tracker) = %+v", d)
	}
	if env.sessions.IsAuthenticated() {
		t.Error("session should be cleared after a rejected token")
	}
}

type failingPolicy struct{}

func (failingPolicy) HasRule(session.Page) bool { return true }

func (failingPolicy) Allow(context.Context, session.AccessRequest) (bool, error) {
	return false, errors.New("rule blew up")
}

func TestNavigationService_RuleErrorDenies(t *testing.T) {
	t.Parallel()
	env := loggedIn(t)
	env.backend.handle(http.MethodGet, "/auth/me", meAs("ROLE_ADMIN"))
	nav := NewNavigationService(env.sessions, failingPolicy{}, testLogger())

	d := nav.Open(context.Background(), session.PageDashboard)
	if d.Page != session.PageMemberships || d.Reason != ReasonDenied {
		t.Errorf("Open(dashboard) = %+v, want denied", d)
	}
}
