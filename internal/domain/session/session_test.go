package session

import (
	"encoding/json"
	"errors"
	"testing"
)

// mapStore is a minimal Store used to test the persistence helpers.
type mapStore map[string]string

func (m mapStore) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m mapStore) Set(key, value string) error {
	m[key] = value
	return nil
}

func (m mapStore) Delete(keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Role
	}{
		{"ROLE_MEMBER", RoleMember},
		{"ROLE_TRAINER", RoleTrainer},
		{"ROLE_ADMIN", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"role_member", RoleMember},
		{" role_admin ", RoleAdmin},
		{"", RoleUnknown},
		{"ROLE_JANITOR", RoleUnknown},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.raw); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRoleShort(t *testing.T) {
	t.Parallel()

	if got := RoleAdmin.Short(); got != "ADMIN" {
		t.Errorf("RoleAdmin.Short() = %q, want %q", got, "ADMIN")
	}
	if got := RoleUnknown.Short(); got != "" {
		t.Errorf("RoleUnknown.Short() = %q, want empty", got)
	}
}

func TestDestinationFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role Role
		want Page
	}{
		{RoleMember, PageClasses},
		{RoleTrainer, PageTrainer},
		{RoleAdmin, PageDashboard},
		{RoleUnknown, PageClasses},
		{Role("ROLE_SOMETHING"), PageClasses},
	}
	for _, tt := range tests {
		if got := DestinationFor(tt.role); got != tt.want {
			t.Errorf("DestinationFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	p, err := ParsePage("dashboard.html")
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if p != PageDashboard {
		t.Errorf("ParsePage = %q, want %q", p, PageDashboard)
	}
	if _, err := ParsePage("admin-secret"); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestIsProtected(t *testing.T) {
	t.Parallel()

	if !IsProtected(PageTracker) || !IsProtected(PageDashboard) {
		t.Error("tracker and dashboard must be protected")
	}
	if IsProtected(PageClasses) || IsProtected(PageMemberships) {
		t.Error("classes and memberships must be public")
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ID
	}{
		{`{"id": 42}`, "42"},
		{`{"id": "abc-1"}`, "abc-1"},
		{`{"id": null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var u User
		if err := json.Unmarshal([]byte(tt.in), &u); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if u.ID != tt.want {
			t.Errorf("Unmarshal(%s).ID = %q, want %q", tt.in, u.ID, tt.want)
		}
	}

	var u User
	if err := json.Unmarshal([]byte(`{"id": true}`), &u); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := mapStore{}
	user := User{ID: "7", FirstName: "Alice", LastName: "Smith", Role: "ROLE_MEMBER"}

	if err := Save(store, "tok-1", user); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store[KeyUserID] != "7" || store[KeyUserRole] != "ROLE_MEMBER" {
		t.Errorf("individual keys not written: %v", store)
	}

	snap, err := Load(store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !snap.Authenticated() || snap.Token != "tok-1" {
		t.Errorf("Token = %q, want %q", snap.Token, "tok-1")
	}
	if snap.User == nil || *snap.User != user {
		t.Errorf("User = %+v, want %+v", snap.User, user)
	}
}

func TestLoad_FallsBackToIndividualKeys(t *testing.T) {
	t.Parallel()

	store := mapStore{
		KeyAuthToken:   "tok",
		KeyUserID:      "3",
		KeyUserRole:    "ROLE_ADMIN",
		KeyCurrentUser: "{not json",
	}
	snap, err := Load(store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.User == nil {
		t.Fatal("expected partial user")
	}
	if snap.User.ID != "3" || snap.User.ParsedRole() != RoleAdmin {
		t.Errorf("User = %+v", snap.User)
	}
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()

	snap, err := Load(mapStore{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Authenticated() || snap.User != nil {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	store := mapStore{}
	_ = Save(store, "tok", User{ID: "1"})
	store["unrelated"] = "keep"

	if err := Clear(store); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range AllKeys {
		if _, err := store.Get(k); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("key %s still present", k)
		}
	}
	if store["unrelated"] != "keep" {
		t.Error("Clear removed an unrelated key")
	}
}

func TestUserDisplay(t *testing.T) {
	t.Parallel()

	u := &User{FirstName: "alice", LastName: "smith"}
	if got := u.Initials(); got != "AS" {
		t.Errorf("Initials = %q, want %q", got, "AS")
	}
	if got := u.DisplayName(); got != "alice smith" {
		t.Errorf("DisplayName = %q", got)
	}
	var none *User
	if none.Initials() != "U" || none.DisplayName() != "User" {
		t.Error("nil user should render as U/User")
	}
}

func TestRestore(t *testing.T) {
	t.Parallel()

	store := mapStore{}
	user := User{ID: "7", FirstName: "Alice", Role: "ROLE_MEMBER"}
	_ = Save(store, "tok-new", User{ID: "9", Role: "ROLE_ADMIN"})

	if err := Restore(store, Snapshot{Token: "tok-1", User: &user}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap, err := Load(store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Token != "tok-1" || snap.User == nil || *snap.User != user {
		t.Errorf("snapshot = %+v, want tok-1 and %+v", snap, user)
	}
	if store[KeyUserRole] != "ROLE_MEMBER" {
		t.Errorf("userRole = %q, want ROLE_MEMBER", store[KeyUserRole])
	}

	if err := Restore(store, Snapshot{}); err != nil {
		t.Fatalf("Restore(empty): %v", err)
	}
	if len(store) != 0 {
		t.Errorf("store = %v, want empty", store)
	}
}
