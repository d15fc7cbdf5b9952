package ports

import (
	"context"

	"github.com/vinodhini/portal/internal/core/domain"
)

// AuthGateway performs the unauthenticated login call.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// ListParams carries the common list query parameters.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Role     string
	ClientID string
}

// ProjectUpdate is a partial project update. Nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *domain.ProjectStatus `json:"status,omitempty"`
}

// CreateProjectInput is the admin project creation payload.
type CreateProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	ClientID    string               `json:"client_id"`
	Status      domain.ProjectStatus `json:"status,omitempty"`
	EmployeeIDs []string             `json:"employee_ids,omitempty"`
}

// ProjectGateway covers /projects.
type ProjectGateway interface {
	ListProjects(ctx context.Context, params ListParams) ([]domain.Project, domain.Page, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, in ProjectUpdate) (*domain.Project, error)
	UpdateProgress(ctx context.Context, id string, progress int) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AssignEmployees(ctx context.Context, id string, employeeIDs []string) error
	ProjectMessages(ctx context.Context, id string) ([]domain.Message, error)
}

// CreateServiceRequestInput is submitted by clients.
type CreateServiceRequestInput struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	ServiceTypeID string `json:"service_type_id,omitempty"`
	ProjectID     string `json:"project_id,omitempty"`
}

// ServiceRequestGateway covers /service-requests.
type ServiceRequestGateway interface {
	ListServiceRequests(ctx context.Context, params ListParams) ([]domain.ServiceRequest, domain.Page, error)
	ClientServiceRequests(ctx context.Context, clientID string) ([]domain.ServiceRequest, error)
	GetServiceRequest(ctx context.Context, id string) (*domain.ServiceRequest, error)
	CreateServiceRequest(ctx context.Context, in CreateServiceRequestInput) (*domain.ServiceRequest, error)
	DeleteServiceRequest(ctx context.Context, id string) error
	ApproveServiceRequest(ctx context.Context, id string, employeeIDs []string) (*domain.ServiceRequest, error)
	RejectServiceRequest(ctx context.Context, id string) error
}

// User collections exposed by the backend.
const (
	CollectionUsers     = "users"
	CollectionEmployees = "employees"
	CollectionClients   = "clients"
)

// UserUpdate is a partial user payload; keys are domain.Field names plus
// any backend-only keys the caller has already vetted.
type UserUpdate map[domain.Field]any

// UserGateway covers /users and the role-specific /employees and /clients
// collections.
type UserGateway interface {
	ListUsers(ctx context.Context, collection string, params ListParams) ([]domain.User, domain.Page, error)
	GetUser(ctx context.Context, collection, id string) (*domain.User, error)
	CreateUser(ctx context.Context, collection string, in UserUpdate) (*domain.User, error)
	UpdateUser(ctx context.Context, collection, id string, in UserUpdate) (*domain.User, error)
	PatchUser(ctx context.Context, collection, id string, in UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, collection, id string) error
	Me(ctx context.Context) (*domain.User, error)
	UpdateMe(ctx context.Context, in UserUpdate) (*domain.User, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

// ServiceTypeInput is the create/update payload for service types.
type ServiceTypeInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ServiceTypeGateway covers /service-types.
type ServiceTypeGateway interface {
	ListServiceTypes(ctx context.Context, status string) ([]domain.ServiceType, error)
	GetServiceType(ctx context.Context, id string) (*domain.ServiceType, error)
	CreateServiceType(ctx context.Context, in ServiceTypeInput) (*domain.ServiceType, error)
	UpdateServiceType(ctx context.Context, id string, in ServiceTypeInput) (*domain.ServiceType, error)
	DeleteServiceType(ctx context.Context, id string) error
}

// MessageGateway covers /messages.
type MessageGateway interface {
	ListMessages(ctx context.Context, params ListParams, projectID string) ([]domain.Message, domain.Page, error)
	GetMessage(ctx context.Context, id string) (*domain.Message, error)
	CreateMessage(ctx context.Context, projectID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// Backend is the full authenticated API surface for one session.
type Backend interface {
	ProjectGateway
	ServiceRequestGateway
	UserGateway
	ServiceTypeGateway
	MessageGateway
}

// BackendFactory builds a Backend bound to one session's credentials.
type BackendFactory func(creds Credentials) Backend
