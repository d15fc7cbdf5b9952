package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinodhini/portal/internal/api/middleware"
	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/core/service"
)

// stubBackend implements only what a test sets; anything else panics on
// the embedded nil interface.
type stubBackend struct {
	ports.Backend

	getProjectFn     func(ctx context.Context, id string) (*domain.Project, error)
	updateProjectFn  func(ctx context.Context, id string, in ports.ProjectUpdate) (*domain.Project, error)
	updateProgressFn func(ctx context.Context, id string, progress int) (*domain.Project, error)
	getRequestFn     func(ctx context.Context, id string) (*domain.ServiceRequest, error)
	approveFn        func(ctx context.Context, id string, employeeIDs []string) (*domain.ServiceRequest, error)
	createUserFn     func(ctx context.Context, collection string, in ports.UserUpdate) (*domain.User, error)
	patchUserFn      func(ctx context.Context, collection, id string, in ports.UserUpdate) (*domain.User, error)
	updateMeFn       func(ctx context.Context, in ports.UserUpdate) (*domain.User, error)
	clientRequestsFn func(ctx context.Context, clientID string) ([]domain.ServiceRequest, error)
}

func (s *stubBackend) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.getProjectFn(ctx, id)
}

func (s *stubBackend) UpdateProject(ctx context.Context, id string, in ports.ProjectUpdate) (*domain.Project, error) {
	return s.updateProjectFn(ctx, id, in)
}

func (s *stubBackend) UpdateProgress(ctx context.Context, id string, progress int) (*domain.Project, error) {
	return s.updateProgressFn(ctx, id, progress)
}

func (s *stubBackend) GetServiceRequest(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	return s.getRequestFn(ctx, id)
}

func (s *stubBackend) ApproveServiceRequest(ctx context.Context, id string, employeeIDs []string) (*domain.ServiceRequest, error) {
	return s.approveFn(ctx, id, employeeIDs)
}

func (s *stubBackend) CreateUser(ctx context.Context, collection string, in ports.UserUpdate) (*domain.User, error) {
	return s.createUserFn(ctx, collection, in)
}

func (s *stubBackend) PatchUser(ctx context.Context, collection, id string, in ports.UserUpdate) (*domain.User, error) {
	return s.patchUserFn(ctx, collection, id, in)
}

func (s *stubBackend) UpdateMe(ctx context.Context, in ports.UserUpdate) (*domain.User, error) {
	return s.updateMeFn(ctx, in)
}

func (s *stubBackend) ClientServiceRequests(ctx context.Context, clientID string) ([]domain.ServiceRequest, error) {
	if s.clientRequestsFn == nil {
		return nil, nil
	}
	return s.clientRequestsFn(ctx, clientID)
}

type memStorage struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
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
	m.sessions[ns] = s
	return nil
}

func (m *memStorage) Clear(_ context.Context, ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, ns)
	return nil
}

type stubAuth struct {
	loginFn func(ctx context.Context, email, password string) (*domain.Session, error)
}

func (a *stubAuth) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if a.loginFn == nil {
		return nil, errors.New("unexpected login")
	}
	return a.loginFn(ctx, email, password)
}

type memReconciliations struct {
	mu      sync.Mutex
	records []ports.Reconciliation
}

func (m *memReconciliations) Record(_ context.Context, r ports.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memReconciliations) Resolve(context.Context, string, time.Time) error {
	return domain.ErrNotFound
}

func (m *memReconciliations) ListOpen(context.Context) ([]ports.Reconciliation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Reconciliation(nil), m.records...), nil
}

type fixedProvider struct {
	ws *service.Workspace
}

func (p fixedProvider) Get(context.Context, string) (*service.Workspace, error) {
	return p.ws, nil
}

type fixture struct {
	ws              *service.Workspace
	reconciliations *memReconciliations
}

// newFixture returns a workspace logged in as role (anonymous when role is
// empty) whose backend is backend.
func newFixture(t *testing.T, role domain.Role, backend *stubBackend, auth *stubAuth) fixture {
	t.Helper()
	storage := &memStorage{sessions: map[string]domain.Session{}}
	if role != "" {
		storage.sessions["ws"] = domain.Session{
			Credential: "opaque",
			Identity:   domain.Identity{UserID: string(role) + "-1", Name: "Test", Role: role},
		}
	}
	if auth == nil {
		auth = &stubAuth{}
	}
	recs := &memReconciliations{}
	mgr := service.NewWorkspaceManager(context.Background(), service.WorkspaceDeps{
		Storage:         storage,
		Auth:            auth,
		Backends:        func(ports.Credentials) ports.Backend { return backend },
		Reconciliations: recs,
		PollInterval:    time.Hour,
		Log:             zerolog.Nop(),
	})
	t.Cleanup(mgr.Close)

	ws, err := mgr.Get(context.Background(), "ws")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return fixture{ws: ws, reconciliations: recs}
}

// call runs h behind the Session middleware. id, when set, is the :id
// path parameter.
func (f fixture) call(t *testing.T, h echo.HandlerFunc, method, body, id string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}

	err := middleware.Session(fixedProvider{f.ws}, middleware.CookieConfig{})(h)(c)
	return rec, err
}
