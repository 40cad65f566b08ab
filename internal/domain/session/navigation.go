package session

import (
	"fmt"
	"strings"
)

// Page is a client page a navigation decision can land on.
type Page string

const (
	PageHome        Page = "index"
	PageClasses     Page = "classes"
	PageTrainer     Page = "trainer"
	PageDashboard   Page = "dashboard"
	PageTracker     Page = "tracker"
	PageMemberships Page = "memberships"
	PageContact     Page = "contact"
	PageProfile     Page = "profile"
)

var pages = []Page{
	PageHome, PageClasses, PageTrainer, PageDashboard,
	PageTracker, PageMemberships, PageContact, PageProfile,
}

// Pages returns every known page.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// ParsePage accepts "dashboard" as well as "dashboard.html".
func ParsePage(raw string) (Page, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".html")
	for _, p := range pages {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", raw)
}

// DestinationFor returns where a user lands after login or registration.
// Every role, including RoleUnknown, has a destination.
func DestinationFor(role Role) Page {
	switch role {
	case RoleMember:
		return PageClasses
	case RoleTrainer:
		return PageTrainer
	case RoleAdmin:
		return PageDashboard
	default:
		return PageClasses
	}
}

// ProtectedPages are the access-controlled pages. Unauthenticated or
// unauthorized visitors are sent to PageMemberships.
var ProtectedPages = []Page{PageTracker, PageDashboard}

// IsProtected reports whether page requires an authorized session.
func IsProtected(page Page) bool {
	for _, p := range ProtectedPages {
		if p == page {
			return true
		}
	}
	return false
}

// AccessRequest is what an access rule is evaluated against.
type AccessRequest struct {
	Role          Role
	Page          Page
	UserID        string
	Authenticated bool
}
