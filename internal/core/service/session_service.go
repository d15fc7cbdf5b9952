package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

const networkLoginMessage = "Unable to reach the server. Please try again."

// SessionService is the single source of truth for who is logged in on one
// browser session. It is the only writer of the credential: login, logout
// and forced invalidation. Every other component reads it.
type SessionService struct {
	namespace string
	storage   ports.SessionStorage
	auth      ports.AuthGateway
	log       zerolog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	current   *domain.Session
	listeners []func(*domain.Identity)
}

// NewSessionService returns a store bound to one storage namespace.
func NewSessionService(namespace string, storage ports.SessionStorage, auth ports.AuthGateway, log zerolog.Logger) *SessionService {
	return &SessionService{
		namespace: namespace,
		storage:   storage,
		auth:      auth,
		log:       log.With().Str("session", namespace).Logger(),
		now:       time.Now,
	}
}

// OnChange registers fn to run synchronously after every identity change.
// fn receives nil on logout.
func (s *SessionService) OnChange(fn func(*domain.Identity)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Restore rehydrates a previously persisted session. The session is trusted
// optimistically until the backend rejects its credential; only a credential
// that is structurally a JWT with a past expiry is discarded up front.
func (s *SessionService) Restore(ctx context.Context) error {
	stored, err := s.storage.Load(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if stored == nil {
		return nil
	}
	if !stored.Valid() || credentialExpired(stored.Credential, s.now()) {
		s.log.Info().Msg("discarding stale persisted session")
		metrics.SessionInvalidationsTotal.WithLabelValues("stale").Inc()
		if err := s.storage.Clear(ctx, s.namespace); err != nil {
			return fmt.Errorf("clear stale session: %w", err)
		}
		return nil
	}
	s.replace(stored)
	return nil
}

// Login authenticates against the backend and persists the session. On
// failure prior state is left untouched and a *domain.LoginError is returned.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	sess, err := s.auth.Login(ctx, email, password)
	if err != nil {
		lerr := classifyLogin(err)
		metrics.LoginsTotal.WithLabelValues(loginResult(lerr)).Inc()
		s.log.Info().Err(err).Str("email", email).Bool("inactive", lerr.Inactive()).Msg("login rejected")
		return nil, lerr
	}
	if !sess.Valid() {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return nil, domain.NewLoginError("", fmt.Errorf("%w: login response missing credential or role", domain.ErrBackend))
	}

	if err := s.storage.Save(ctx, s.namespace, *sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.replace(sess)

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", sess.Identity.UserID).Str("role", string(sess.Identity.Role)).Msg("logged in")
	id := sess.Identity
	return &id, nil
}

// Logout drops the session in memory and in storage. It is idempotent; the
// in-memory identity is cleared even when storage fails.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.storage.Clear(ctx, s.namespace)
	s.replace(nil)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Invalidate is called when the backend rejects the credential.
func (s *SessionService) Invalidate(ctx context.Context, reason error) {
	if s.Current() == nil {
		return
	}
	s.log.Warn().Err(reason).Msg("credential rejected by backend, logging out")
	metrics.SessionInvalidationsTotal.WithLabelValues("rejected").Inc()
	if err := s.Logout(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear invalidated session")
	}
}

// Current returns a copy of the last known identity without a network call.
func (s *SessionService) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := s.current.Identity
	return &id
}

// Credential returns the bearer credential, or "" when logged out.
func (s *SessionService) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Credential
}

// Namespace identifies the browser session this store belongs to.
func (s *SessionService) Namespace() string { return s.namespace }

func (s *SessionService) replace(sess *domain.Session) {
	var next *domain.Session
	if sess != nil {
		cp := *sess
		next = &cp
	}

	s.mu.Lock()
	s.current = next
	listeners := make([]func(*domain.Identity), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	var id *domain.Identity
	if next != nil {
		cp := next.Identity
		id = &cp
	}
	for _, fn := range listeners {
		fn(id)
	}
}

func classifyLogin(err error) *domain.LoginError {
	if errors.Is(err, domain.ErrNetwork) {
		return domain.NewLoginError(networkLoginMessage, err)
	}
	var pub interface{ PublicMessage() string }
	if errors.As(err, &pub) {
		return domain.NewLoginError(pub.PublicMessage(), err)
	}
	return domain.NewLoginError(err.Error(), err)
}

func loginResult(err *domain.LoginError) string {
	if err.Inactive() {
		return "inactive"
	}
	return "failed"
}

// credentialExpired reports whether token is a JWT whose exp claim has
// passed. Opaque tokens are never considered expired here.
func credentialExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
