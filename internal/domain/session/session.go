package session

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the session as it is persisted: a token and the identity that
// goes with it. The zero value is the unauthenticated session.
type Snapshot struct {
	Token string
	User  *User
}

// Authenticated reports whether the snapshot carries a token.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// Load reads the persisted session from store. A missing or malformed
// currentUser blob falls back to the individual userId/userRole keys; when
// none of them are present User is nil.
func Load(store Store) (Snapshot, error) {
	var snap Snapshot

	token, err := Lookup(store, KeyAuthToken)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", KeyAuthToken, err)
	}
	snap.Token = token

	blob, err := Lookup(store, KeyCurrentUser)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", KeyCurrentUser, err)
	}
	if blob != "" {
		var u User
		if json.Unmarshal([]byte(blob), &u) == nil {
			snap.User = &u
			return snap, nil
		}
	}

	id, err := Lookup(store, KeyUserID)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", KeyUserID, err)
	}
	role, err := Lookup(store, KeyUserRole)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", KeyUserRole, err)
	}
	if id != "" || role != "" {
		snap.User = &User{ID: ID(id), Role: role}
	}
	return snap, nil
}

// Save writes token and identity to store, one key at a time.
func Save(store Store, token string, user User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	writes := []struct{ key, value string }{
		{KeyAuthToken, token},
		{KeyUserRole, user.Role},
		{KeyUserID, user.ID.String()},
		{KeyCurrentUser, string(blob)},
	}
	for _, w := range writes {
		if err := store.Set(w.key, w.value); err != nil {
			return fmt.Errorf("write %s: %w", w.key, err)
		}
	}
	return nil
}

// SaveUser rewrites the identity keys and leaves the token alone.
func SaveUser(store Store, user User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := store.Set(KeyUserRole, user.Role); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserRole, err)
	}
	if err := store.Set(KeyUserID, user.ID.String()); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserID, err)
	}
	if err := store.Set(KeyCurrentUser, string(blob)); err != nil {
		return fmt.Errorf("write %s: %w", KeyCurrentUser, err)
	}
	return nil
}

// Clear removes every persisted session key.
func Clear(store Store) error {
	return store.Delete(AllKeys...)
}

// Restore writes snap back to store, replacing whatever is there. A zero
// snapshot clears every key.
func Restore(store Store, snap Snapshot) error {
	if err := Clear(store); err != nil {
		return err
	}
	if snap.Token != "" {
		if err := store.Set(KeyAuthToken, snap.Token); err != nil {
			return fmt.Errorf("write %s: %w", KeyAuthToken, err)
		}
	}
	if snap.User != nil {
		return SaveUser(store, *snap.User)
	}
	return nil
}
