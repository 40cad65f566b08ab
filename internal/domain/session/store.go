package session

import "errors"

// Keys under which the session is persisted. All four are written on login
// and registration and removed on logout.
const (
	KeyAuthToken   = "authToken"
	KeyUserRole    = "userRole"
	KeyUserID      = "userId"
	KeyCurrentUser = "currentUser"
)

// AllKeys lists every persisted session key in the order they are cleared.
var AllKeys = []string{KeyAuthToken, KeyUserRole, KeyUserID, KeyCurrentUser}

// ErrKeyNotFound is returned by Store.Get when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persisted key-value store backing the session, the local
// equivalent of a browser's localStorage. Writes of different keys are
// independent; there is no transaction spanning several keys.
// Implementations: file (default), sqlite, in-memory (tests).
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(keys ...string) error
}

// Lookup returns the value under key, treating ErrKeyNotFound as "".
// Other store errors are returned.
func Lookup(store Store, key string) (string, error) {
	v, err := store.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}
