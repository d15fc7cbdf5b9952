package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vinodhini/portal/internal/core/domain"
)

func clientSession(token string) *domain.Session {
	return &domain.Session{
		Credential: token,
		Identity:   domain.Identity{UserID: "c1", Name: "Ana", Role: domain.RoleClient},
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestSessionService_LoginPersistsAndNotifies(t *testing.T) {
	storage := newMemStorage()
	s := NewSessionService("ns", storage, &stubAuth{session: clientSession("tok")}, zerolog.Nop())

	var seen []*domain.Identity
	s.OnChange(func(id *domain.Identity) { seen = append(seen, id) })

	id, err := s.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, domain.RoleClient, id.Role)
	require.Equal(t, "tok", s.Credential())
	require.True(t, storage.has("ns"))
	require.Len(t, seen, 1)
	require.Equal(t, "c1", seen[0].UserID)
}

func TestSessionService_FailedLoginKeepsPriorState(t *testing.T) {
	storage := newMemStorage()
	auth := &stubAuth{session: clientSession("tok")}
	s := NewSessionService("ns", storage, auth, zerolog.Nop())
	_, err := s.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)

	auth.err = errors.New("Invalid credentials")
	_, err = s.Login(context.Background(), "ana@example.com", "wrong1")

	var lerr *domain.LoginError
	require.ErrorAs(t, err, &lerr)
	require.False(t, lerr.Inactive())
	require.Equal(t, "Invalid credentials", lerr.Message)
	require.Equal(t, "tok", s.Credential())
	require.True(t, storage.has("ns"))
}

func TestSessionService_LoginClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		inactive bool
		message  string
	}{
		{"inactive", errors.New("Your account is inactive"), true, ""},
		{"network", domain.ErrNetwork, false, networkLoginMessage},
		{"generic", errors.New("Login failed"), false, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessionService("ns", newMemStorage(), &stubAuth{err: tt.err}, zerolog.Nop())
			_, err := s.Login(context.Background(), "ana@example.com", "secret1")

			var lerr *domain.LoginError
			require.ErrorAs(t, err, &lerr)
			require.Equal(t, tt.inactive, lerr.Inactive())
			if tt.message != "" {
				require.Equal(t, tt.message, lerr.Message)
			}
			require.Nil(t, s.Current())
		})
	}
}

func TestSessionService_LoginRejectsIncompleteSession(t *testing.T) {
	storage := newMemStorage()
	s := NewSessionService("ns", storage, &stubAuth{session: &domain.Session{Credential: "tok"}}, zerolog.Nop())

	_, err := s.Login(context.Background(), "ana@example.com", "secret1")
	require.ErrorIs(t, err, domain.ErrBackend)
	require.False(t, storage.has("ns"))
}

func TestSessionService_LogoutIsIdempotent(t *testing.T) {
	storage := newMemStorage()
	s := NewSessionService("ns", storage, &stubAuth{session: clientSession("tok")}, zerolog.Nop())
	_, err := s.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	require.NoError(t, s.Logout(context.Background()))
	require.Nil(t, s.Current())
	require.Empty(t, s.Credential())
	require.False(t, storage.has("ns"))
}

func TestSessionService_Restore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		sess domain.Session
		kept bool
	}{
		{"opaque token", *clientSession("opaque-token"), true},
		{"live jwt", *clientSession(signed(t, now.Add(time.Hour))), true},
		{"expired jwt", *clientSession(signed(t, now.Add(-time.Minute))), false},
		{"missing role", domain.Session{Credential: "tok"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			storage.sessions["ns"] = tt.sess
			s := NewSessionService("ns", storage, &stubAuth{}, zerolog.Nop())
			s.now = func() time.Time { return now }

			require.NoError(t, s.Restore(context.Background()))
			require.Equal(t, tt.kept, s.Current() != nil)
			require.Equal(t, tt.kept, storage.has("ns"))
		})
	}
}

func TestSessionService_Invalidate(t *testing.T) {
	storage := newMemStorage()
	s := NewSessionService("ns", storage, &stubAuth{session: clientSession("tok")}, zerolog.Nop())

	s.Invalidate(context.Background(), domain.ErrUnauthenticated)
	require.Zero(t, storage.clears, "invalidating an anonymous session does nothing")

	_, err := s.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)

	s.Invalidate(context.Background(), domain.ErrUnauthenticated)
	require.Nil(t, s.Current())
	require.False(t, storage.has("ns"))
}
