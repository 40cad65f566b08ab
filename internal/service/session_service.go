package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
	"github.com/fitness-app/fitclient/internal/domain/session"
	"github.com/fitness-app/fitclient/internal/domain/validation"
)

// SessionService owns the authentication lifecycle: it is the only writer of
// the token held by the API client and of the persisted session keys.
type SessionService struct {
	client *api.Client
	store  session.Store
	logger *slog.Logger

	mu   sync.RWMutex
	user *session.User
}

// NewSessionService creates a SessionService and loads the persisted session.
// A load failure is logged and leaves the service unauthenticated.
func NewSessionService(client *api.Client, store session.Store, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionService{
		client: client,
		store:  store,
		logger: logger,
	}
	if err := s.Sync(); err != nil {
		logger.Warn("failed to load persisted session", "error", err)
	}
	return s
}

// Login authenticates with username and password. On success the token and
// identity are held in memory and persisted. On failure nothing changes and
// the backend's error is returned unchanged.
func (s *SessionService) Login(ctx context.Context, username, password string) (*session.AuthResult, error) {
	result, err := s.client.Login(ctx, session.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.establish(result); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "user_id", result.User.ID, "role", result.User.Role)
	return result, nil
}

// Register creates an account from profile and logs it in. Same contract as Login.
func (s *SessionService) Register(ctx context.Context, profile session.Profile) (*session.AuthResult, error) {
	result, err := s.client.Register(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := s.establish(result); err != nil {
		return nil, err
	}
	s.logger.Info("registered", "user_id", result.User.ID, "role", result.User.Role)
	return result, nil
}

// RegisterMember validates form locally and registers a ROLE_MEMBER account.
// A *validation.ValidationError is returned without contacting the backend.
func (s *SessionService) RegisterMember(ctx context.Context, form session.RegistrationForm) (*session.AuthResult, error) {
	if err := validation.ValidateRegistration(form); err != nil {
		return nil, err
	}
	return s.Register(ctx, form.MemberProfile())
}

// establish persists a successful login or registration, then switches the
// in-memory state over. If persisting fails the prior persisted session is
// written back and memory is left as it was.
func (s *SessionService) establish(result *session.AuthResult) error {
	prior, err := session.Load(s.store)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if err := session.Save(s.store, result.Token, result.User); err != nil {
		if restoreErr := session.Restore(s.store, prior); restoreErr != nil {
			s.logger.Error("failed to restore prior session", "error", restoreErr)
		}
		return fmt.Errorf("persist session: %w", err)
	}

	user := result.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.client.SetToken(result.Token)
	return nil
}

// Logout notifies the backend when a token is present, then clears the
// in-memory token, the current user and every persisted key. The backend
// call and the store are best effort: failures are logged, never returned.
func (s *SessionService) Logout(ctx context.Context) {
	token, err := session.Lookup(s.store, session.KeyAuthToken)
	if err != nil {
		s.logger.Warn("failed to read persisted token", "error", err)
	}
	if token == "" {
		token = s.client.Token()
	}

	if token != "" {
		if err := s.client.Logout(ctx, token); err != nil {
			s.logger.Warn("logout notification failed", "error", err)
		}
	}

	s.client.ClearToken()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := session.Clear(s.store); err != nil {
		s.logger.Error("failed to clear persisted session", "error", err)
	}
	s.logger.Debug("logged out")
}

// VerifyToken asks the backend who the current token belongs to. On success
// the identity is refreshed in memory and in the store. On failure the
// session is logged out and ErrSessionInvalid wrapping the cause is returned.
// Without a token ErrAuthRequired is returned and nothing is sent.
func (s *SessionService) VerifyToken(ctx context.Context) (*session.User, error) {
	if !s.client.IsAuthenticated() {
		return nil, ErrAuthRequired
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.logger.Warn("token verification failed", "error", err)
		s.Logout(ctx)
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	if err := session.SaveUser(s.store, *user); err != nil {
		s.logger.Warn("failed to persist verified user", "error", err)
	}
	return copyUser(user), nil
}

// IsAuthenticated reports whether a token is held. No network call.
func (s *SessionService) IsAuthenticated() bool {
	return s.client.IsAuthenticated()
}

// CurrentUser returns the known identity, or nil.
func (s *SessionService) CurrentUser() *session.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// ResetPassword requests a password reset mail.
func (s *SessionService) ResetPassword(ctx context.Context, email string) error {
	if email == "" {
		return validation.NewValidationError("email", "Please enter a valid email address")
	}
	return s.client.ResetPassword(ctx, email)
}

// Sync re-reads the token and identity from the store, picking up changes
// made by another process.
func (s *SessionService) Sync() error {
	if err := s.client.RefreshToken(); err != nil {
		return err
	}
	snap, err := session.Load(s.store)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = snap.User
	s.mu.Unlock()
	return nil
}

// Destination returns the page a user with role lands on after logging in.
func (s *SessionService) Destination(role session.Role) session.Page {
	return session.DestinationFor(role)
}

func copyUser(u *session.User) *session.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
