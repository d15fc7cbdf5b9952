package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

func newManager(t *testing.T, storage *memStorage, auth *stubAuth, src *stubSource) *WorkspaceManager {
	t.Helper()
	mgr := NewWorkspaceManager(context.Background(), WorkspaceDeps{
		Storage:         storage,
		Auth:            auth,
		Backends:        func(ports.Credentials) ports.Backend { return stubBackend{source: src} },
		Reconciliations: newMemReconciliations(),
		PollInterval:    time.Hour,
		Log:             zerolog.Nop(),
	})
	t.Cleanup(mgr.Close)
	return mgr
}

func TestWorkspaceManager_ReusesLoggedInWorkspace(t *testing.T) {
	storage := newMemStorage()
	storage.sessions["sid"] = *clientSession("opaque")
	mgr := newManager(t, storage, &stubAuth{}, &stubSource{})

	a, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	b, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, mgr.Len())
}

func TestWorkspaceManager_AnonymousWorkspacesAreNotKept(t *testing.T) {
	mgr := newManager(t, newMemStorage(), &stubAuth{}, &stubSource{})

	for i := 0; i < 1000; i++ {
		ws, err := mgr.Get(context.Background(), fmt.Sprintf("anon-%d", i))
		require.NoError(t, err)
		require.Nil(t, ws.Session.Current())
	}
	require.Zero(t, mgr.Len())
}

func TestWorkspaceManager_LoginAdoptsLogoutReleases(t *testing.T) {
	mgr := newManager(t, newMemStorage(), &stubAuth{session: clientSession("tok")}, &stubSource{})
	ws, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.Zero(t, mgr.Len())

	_, err = ws.Session.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, 1, mgr.Len())
	again, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.Same(t, ws, again)

	require.NoError(t, ws.Session.Logout(context.Background()))
	require.Zero(t, mgr.Len())
}

func TestWorkspaceManager_SweepEvictsIdle(t *testing.T) {
	storage := newMemStorage()
	storage.sessions["old"] = *clientSession("opaque")
	storage.sessions["fresh"] = *clientSession("opaque")
	mgr := newManager(t, storage, &stubAuth{}, &stubSource{})
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return now }
	mgr.idleTTL = time.Hour

	old, err := mgr.Get(context.Background(), "old")
	require.NoError(t, err)
	p := old.Poller()
	require.NotNil(t, p)

	now = now.Add(50 * time.Minute)
	_, err = mgr.Get(context.Background(), "fresh")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	require.Equal(t, 1, mgr.Sweep())
	require.Equal(t, 1, mgr.Len())
	require.False(t, p.Running())
	require.True(t, storage.has("old"), "eviction keeps the persisted session")

	restored, err := mgr.Get(context.Background(), "old")
	require.NoError(t, err)
	require.NotSame(t, old, restored)
	require.NotNil(t, restored.Session.Current())
}

func TestWorkspace_PollerFollowsClientSession(t *testing.T) {
	src := &stubSource{}
	mgr := newManager(t, newMemStorage(), &stubAuth{session: clientSession("tok")}, src)
	ws, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.Nil(t, ws.Poller())

	_, err = ws.Session.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	p := ws.Poller()
	require.NotNil(t, p)
	require.True(t, p.Running())
	require.Equal(t, "c1", p.ClientID())

	require.NoError(t, ws.Session.Logout(context.Background()))
	require.Nil(t, ws.Poller())
	require.False(t, p.Running())
}

func TestWorkspace_NoPollerForStaff(t *testing.T) {
	sess := &domain.Session{Credential: "tok", Identity: domain.Identity{UserID: "e1", Role: domain.RoleEmployee}}
	mgr := newManager(t, newMemStorage(), &stubAuth{session: sess}, &stubSource{})
	ws, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)

	_, err = ws.Session.Login(context.Background(), "eve@example.com", "secret1")
	require.NoError(t, err)
	require.Nil(t, ws.Poller())
}

func TestWorkspaceManager_RestoresClientSession(t *testing.T) {
	storage := newMemStorage()
	storage.sessions["sid"] = *clientSession("opaque")
	src := &stubSource{}
	mgr := newManager(t, storage, &stubAuth{}, src)

	ws, err := mgr.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.NotNil(t, ws.Session.Current())
	p := ws.Poller()
	require.NotNil(t, p)
	require.Eventually(t, func() bool { return src.callCount() >= 1 }, time.Second, 5*time.Millisecond)

	mgr.Forget("sid")
	require.False(t, p.Running())
	require.Nil(t, ws.Poller())
}
