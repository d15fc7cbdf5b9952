package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// Workspace bundles everything owned by one browser session: its session
// store, a backend client bound to that session's credential, the project
// state machine and, for clients, the notification poller.
type Workspace struct {
	ID       string
	Session  *SessionService
	Backend  ports.Backend
	Projects *ProjectService
	Feed     *NotificationFeed

	root         context.Context
	pollInterval time.Duration
	log          zerolog.Logger

	mu     sync.Mutex
	poller *NotificationPoller
}

// Poller returns the running notification poller, or nil when the session
// is not a client.
func (w *Workspace) Poller() *NotificationPoller {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.poller
}

// Close stops background work owned by the workspace.
func (w *Workspace) Close() {
	w.swapPoller(nil)
}

// onIdentityChange keeps the poller scoped to a logged-in client: it starts
// one on client login and tears it down on logout or when the identity
// belongs to anyone else.
func (w *Workspace) onIdentityChange(id *domain.Identity) {
	if id == nil || id.Role != domain.RoleClient {
		w.swapPoller(nil)
		return
	}
	if cur := w.Poller(); cur != nil && cur.ClientID() == id.UserID {
		return
	}
	p := NewNotificationPoller(w.Backend, id.UserID, w.Feed, w.pollInterval, w.log)
	w.swapPoller(p)
	p.Start(w.root)
}

func (w *Workspace) swapPoller(next *NotificationPoller) {
	w.mu.Lock()
	prev := w.poller
	w.poller = next
	w.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
}

// DefaultIdleTTL is how long a logged-in workspace stays in memory without
// a request before it is evicted.
const DefaultIdleTTL = 24 * time.Hour

// WorkspaceDeps are the process-wide collaborators shared by all workspaces.
type WorkspaceDeps struct {
	Storage         ports.SessionStorage
	Auth            ports.AuthGateway
	Backends        ports.BackendFactory
	Reconciliations ports.ReconciliationRepository
	PollInterval    time.Duration
	// IdleTTL bounds how long an unused workspace is kept. Zero means
	// DefaultIdleTTL.
	IdleTTL time.Duration
	Log     zerolog.Logger
}

type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// WorkspaceManager hands out one Workspace per browser session id. Only
// logged-in workspaces are kept: an anonymous caller gets a fresh workspace
// per request, which the manager adopts on login and drops on logout.
// Workspaces idle for longer than IdleTTL are evicted by Sweep; their
// persisted session is restored on the next request.
type WorkspaceManager struct {
	root    context.Context
	deps    WorkspaceDeps
	idleTTL time.Duration
	now     func() time.Time

	mu         sync.Mutex
	workspaces map[string]*entry
}

// NewWorkspaceManager returns a manager whose background pollers live until
// root is cancelled.
func NewWorkspaceManager(root context.Context, deps WorkspaceDeps) *WorkspaceManager {
	ttl := deps.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &WorkspaceManager{
		root:       root,
		deps:       deps,
		idleTTL:    ttl,
		now:        time.Now,
		workspaces: make(map[string]*entry),
	}
}

// Get returns the workspace for id. A workspace not in memory is built and
// its persisted session restored; it is kept only if that yields a
// logged-in identity.
func (m *WorkspaceManager) Get(ctx context.Context, id string) (*Workspace, error) {
	m.mu.Lock()
	if e, ok := m.workspaces[id]; ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return e.ws, nil
	}
	m.mu.Unlock()

	ws := m.build(id)
	if err := ws.Session.Restore(ctx); err != nil {
		ws.Close()
		return nil, fmt.Errorf("workspace %s: %w", id, err)
	}

	m.mu.Lock()
	e, ok := m.workspaces[id]
	m.mu.Unlock()
	if ok && e.ws != ws {
		// A concurrent request for the same id won.
		ws.Close()
		return e.ws, nil
	}
	return ws, nil
}

func (m *WorkspaceManager) build(id string) *Workspace {
	log := m.deps.Log.With().Str("workspace", id).Logger()
	session := NewSessionService(id, m.deps.Storage, m.deps.Auth, log)
	backend := m.deps.Backends(session)
	ws := &Workspace{
		ID:           id,
		Session:      session,
		Backend:      backend,
		Projects:     NewProjectService(backend, m.deps.Reconciliations, log),
		Feed:         NewNotificationFeed(defaultFeedSize),
		root:         m.root,
		pollInterval: m.deps.PollInterval,
		log:          log,
	}
	session.OnChange(func(identity *domain.Identity) {
		ws.onIdentityChange(identity)
		if identity != nil {
			m.adopt(ws)
		} else {
			m.release(ws)
		}
	})
	return ws
}

// adopt keeps ws once it holds a logged-in identity. A different workspace
// already registered under the same id is left in place.
func (m *WorkspaceManager) adopt(ws *Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.workspaces[ws.ID]; ok {
		if e.ws == ws {
			e.lastSeen = m.now()
		}
		return
	}
	m.workspaces[ws.ID] = &entry{ws: ws, lastSeen: m.now()}
}

// release drops ws from memory after logout. Its poller has already been
// stopped by the identity change.
func (m *WorkspaceManager) release(ws *Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.workspaces[ws.ID]; ok && e.ws == ws {
		delete(m.workspaces, ws.ID)
	}
}

// Len is the number of workspaces held in memory.
func (m *WorkspaceManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// Sweep evicts every workspace unused for longer than IdleTTL and returns
// how many went. Persisted session state is untouched.
func (m *WorkspaceManager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Workspace
	for id, e := range m.workspaces {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.ws)
			delete(m.workspaces, id)
		}
	}
	m.mu.Unlock()

	for _, ws := range idle {
		ws.Close()
	}
	if len(idle) > 0 {
		m.deps.Log.Info().Int("evicted", len(idle)).Msg("evicted idle workspaces")
	}
	return len(idle)
}

// Run sweeps idle workspaces until ctx is cancelled.
func (m *WorkspaceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval(m.idleTTL))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	if iv > 10*time.Minute {
		iv = 10 * time.Minute
	}
	return iv
}

// Forget drops a workspace from memory after stopping its background work.
// Persisted session state is untouched.
func (m *WorkspaceManager) Forget(id string) {
	m.mu.Lock()
	e, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()
	if ok {
		e.ws.Close()
	}
}

// Close stops every workspace.
func (m *WorkspaceManager) Close() {
	m.mu.Lock()
	all := make([]*Workspace, 0, len(m.workspaces))
	for _, e := range m.workspaces {
		all = append(all, e.ws)
	}
	m.workspaces = make(map[string]*entry)
	m.mu.Unlock()

	for _, ws := range all {
		ws.Close()
	}
}
