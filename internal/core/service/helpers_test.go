package service

import (
	"context"
	"sync"
	"time"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

type memStorage struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	clears   int
	saveErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{sessions: map[string]domain.Session{}}
}

func (m *memStorage) Load(_ context.Context, ns string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[ns]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStorage) Save(_ context.Context, ns string, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[ns] = s
	return nil
}

func (m *memStorage) Clear(_ context.Context, ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	delete(m.sessions, ns)
	return nil
}

func (m *memStorage) has(ns string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[ns]
	return ok
}

type stubAuth struct {
	session *domain.Session
	err     error
}

func (a *stubAuth) Login(context.Context, string, string) (*domain.Session, error) {
	if a.err != nil {
		return nil, a.err
	}
	s := *a.session
	return &s, nil
}

// stubProjects is a ProjectGateway whose writes are scripted per call.
type stubProjects struct {
	ports.ProjectGateway

	mu            sync.Mutex
	statusCalls   []domain.ProjectStatus
	progressCalls []int
	statusErr     error
	progressErr   error
	block         chan struct{}
	entered       chan struct{}
}

func (s *stubProjects) UpdateProject(_ context.Context, id string, in ports.ProjectUpdate) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Status != nil {
		s.statusCalls = append(s.statusCalls, *in.Status)
	}
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return nil, nil
}

func (s *stubProjects) UpdateProgress(_ context.Context, id string, progress int) (*domain.Project, error) {
	s.mu.Lock()
	block, entered := s.block, s.entered
	s.block = nil
	s.progressCalls = append(s.progressCalls, progress)
	err := s.progressErr
	s.mu.Unlock()

	if block != nil {
		close(entered)
		<-block
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubProjects) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statusCalls), len(s.progressCalls)
}

type memReconciliations struct {
	mu      sync.Mutex
	open    map[string]ports.Reconciliation
	records int
}

func newMemReconciliations() *memReconciliations {
	return &memReconciliations{open: map[string]ports.Reconciliation{}}
}

func (m *memReconciliations) Record(_ context.Context, r ports.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records++
	m.open[r.ProjectID] = r
	return nil
}

func (m *memReconciliations) Resolve(_ context.Context, projectID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.open[projectID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.open, projectID)
	return nil
}

func (m *memReconciliations) ListOpen(context.Context) ([]ports.Reconciliation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.Reconciliation, 0, len(m.open))
	for _, r := range m.open {
		out = append(out, r)
	}
	return out, nil
}

// stubSource serves a mutable snapshot. hold makes the next call block
// until release is closed.
type stubSource struct {
	mu      sync.Mutex
	current []domain.ServiceRequest
	err     error
	gate    chan struct{}
	entered chan struct{}
	calls   int
}

func (s *stubSource) set(err error, rs ...domain.ServiceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rs
	s.err = err
}

func (s *stubSource) hold() (entered, release chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.entered = make(chan struct{})
	return s.entered, s.gate
}

func (s *stubSource) ClientServiceRequests(context.Context, string) ([]domain.ServiceRequest, error) {
	s.mu.Lock()
	s.calls++
	gate, entered := s.gate, s.entered
	s.gate = nil
	s.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.ServiceRequest(nil), s.current...), nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubBackend is a Backend that only knows how to list a client's requests.
type stubBackend struct {
	ports.Backend
	source *stubSource
}

func (b stubBackend) ClientServiceRequests(ctx context.Context, clientID string) ([]domain.ServiceRequest, error) {
	return b.source.ClientServiceRequests(ctx, clientID)
}

type memSink struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (m *memSink) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
}

func (m *memSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func request(id string, status domain.ServiceRequestStatus) domain.ServiceRequest {
	return domain.ServiceRequest{ID: id, Title: "Request " + id, Status: status}
}
