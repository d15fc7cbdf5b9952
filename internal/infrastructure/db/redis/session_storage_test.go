package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vinodhini/portal/internal/core/domain"
)

func newTestStorage(t *testing.T, ttl time.Duration) (*SessionStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStorage(client, "test", ttl), mr
}

func testSession() domain.Session {
	return domain.Session{
		Credential: "tok",
		Identity:   domain.Identity{UserID: "u1", Name: "Ana", Email: "a@x.io", Role: domain.RoleClient},
	}
}

func TestSessionStorage_Keys(t *testing.T) {
	s := NewSessionStorage(nil, "", 0)
	tk, ik := s.keys("abc")
	require.Equal(t, "portal:abc:auth_token", tk)
	require.Equal(t, "portal:abc:user_data", ik)
	require.Equal(t, 24*time.Hour, s.ttl)
}

func TestSessionStorage_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Hour)

	require.NoError(t, s.Save(ctx, "ns", testSession()))

	tok, err := mr.Get("test:ns:auth_token")
	require.NoError(t, err)
	require.Equal(t, "tok", tok)
	require.True(t, mr.Exists("test:ns:user_data"))
	require.Equal(t, time.Hour, mr.TTL("test:ns:auth_token"))
	require.Equal(t, time.Hour, mr.TTL("test:ns:user_data"))

	got, err := s.Load(ctx, "ns")
	require.NoError(t, err)
	want := testSession()
	require.Equal(t, &want, got)

	require.NoError(t, s.Clear(ctx, "ns"))
	require.False(t, mr.Exists("test:ns:auth_token"))
	require.False(t, mr.Exists("test:ns:user_data"))

	got, err = s.Load(ctx, "ns")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, s.Clear(ctx, "ns"), "clearing twice is harmless")
}

func TestSessionStorage_SaveRejectsIncompleteSession(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour)

	err := s.Save(context.Background(), "ns", domain.Session{Credential: "tok"})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Empty(t, mr.Keys())
}

func TestSessionStorage_BothKeysExpireTogether(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Minute)
	require.NoError(t, s.Save(ctx, "ns", testSession()))

	mr.FastForward(2 * time.Minute)

	require.False(t, mr.Exists("test:ns:auth_token"))
	require.False(t, mr.Exists("test:ns:user_data"))
	got, err := s.Load(ctx, "ns")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionStorage_HalfWrittenPairIsCleared(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Hour)
	require.NoError(t, mr.Set("test:ns:auth_token", "orphan"))

	got, err := s.Load(ctx, "ns")
	require.NoError(t, err)
	require.Nil(t, got)
	require.False(t, mr.Exists("test:ns:auth_token"))
}

func TestSessionStorage_LoadFailsWhenRedisIsDown(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour)
	mr.Close()

	_, err := s.Load(context.Background(), "ns")
	require.Error(t, err)
}

func TestDecodeSession(t *testing.T) {
	tests := []struct {
		name    string
		vals    []any
		want    *domain.Session
		wantErr error
	}{
		{name: "absent", vals: []any{nil, nil}},
		{name: "token only", vals: []any{"tok", nil}, wantErr: errIncompleteSession},
		{name: "identity only", vals: []any{nil, `{"id":"u1","role":"client"}`}, wantErr: errIncompleteSession},
		{name: "corrupt identity", vals: []any{"tok", `{`}, wantErr: errIncompleteSession},
		{
			name: "complete",
			vals: []any{"tok", `{"id":"u1","name":"Ana","email":"a@x.io","role":"client"}`},
			want: &domain.Session{Credential: "tok", Identity: domain.Identity{UserID: "u1", Name: "Ana", Email: "a@x.io", Role: domain.RoleClient}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSession(tt.vals)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
