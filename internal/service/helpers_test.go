package service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
	"github.com/fitness-app/fitclient/internal/adapter/outbound/memory"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordedRequest is one request seen by fakeBackend.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func (r recordedRequest) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s %s body %q: %v", r.Method, r.Path, r.Body, err)
	}
}

// fakeBackend is an httptest server that records every request and answers
// from per-route handlers. Unknown routes get 404.
type fakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{handlers: make(map[string]http.HandlerFunc)}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.handlers[method+" "+path] = h
	b.mu.Unlock()
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := b.handlers[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	h(w, r)
}

// requestsTo returns the recorded requests for method and path.
func (b *fakeBackend) requestsTo(method, path string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedRequest
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond returns a handler that always answers with status and v.
func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, v)
	}
}

var alice = session.User{
	ID:        "7",
	Username:  "alice",
	Email:     "alice@example.com",
	FirstName: "Alice",
	LastName:  "Smith",
	Role:      "ROLE_MEMBER",
}

// authBody is what /auth/login and /auth/register answer with.
func authBody(token string, u session.User) map[string]any {
	return map[string]any{
		"token": token,
		"user": map[string]any{
			"id":        7,
			"username":  u.Username,
			"email":     u.Email,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"role":      u.Role,
		},
	}
}

type testEnv struct {
	backend  *fakeBackend
	store    *memory.KVStore
	client   *api.Client
	sessions *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	store := memory.NewKVStore()
	return newTestEnvWithStore(t, backend, store)
}

func newTestEnvWithStore(t *testing.T, backend *fakeBackend, store *memory.KVStore) *testEnv {
	t.Helper()
	client := api.NewClient(
		api.WithBaseURL(backend.srv.URL),
		api.WithStore(store),
		api.WithLogger(testLogger()),
	)
	return &testEnv{
		backend:  backend,
		store:    store,
		client:   client,
		sessions: NewSessionService(client, store, testLogger()),
	}
}

// loggedIn returns an env whose store already holds a session for alice.
func loggedIn(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	store := memory.NewKVStore()
	if err := session.Save(store, "tok-alice", alice); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return newTestEnvWithStore(t, backend, store)
}
