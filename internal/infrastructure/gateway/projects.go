package gateway

import (
	"context"
	"net/http"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

func (cl *Client) ListProjects(ctx context.Context, params ports.ListParams) ([]domain.Project, domain.Page, error) {
	var env envelope[[]domain.Project]
	err := cl.do(ctx, call{method: http.MethodGet, path: "/projects", query: listQuery(params), denied: "Access denied to projects"}, &env)
	if err != nil {
		return nil, domain.Page{}, err
	}
	return env.Data, pageOf(env.Pagination), nil
}

func (cl *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var env envelope[domain.Project]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/projects/" + escape(id), denied: "Access denied to this project"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) CreateProject(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	var env envelope[domain.Project]
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/projects", body: in, denied: "Access denied: Only admins can create projects"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) UpdateProject(ctx context.Context, id string, in ports.ProjectUpdate) (*domain.Project, error) {
	var env envelope[domain.Project]
	if err := cl.do(ctx, call{method: http.MethodPut, path: "/projects/" + escape(id), body: in, denied: "Access denied to update this project"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func (cl *Client) UpdateProgress(ctx context.Context, id string, progress int) (*domain.Project, error) {
	var env envelope[domain.Project]
	c := call{
		method: http.MethodPatch,
		path:   "/projects/" + escape(id) + "/progress",
		body:   progressRequest{Progress: progress},
		denied: "Access denied to update project progress",
	}
	if err := cl.do(ctx, c, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DeleteProject(ctx context.Context, id string) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: "/projects/" + escape(id), denied: "Access denied: Only admins can delete projects"}, nil)
}

type assignRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

func (cl *Client) AssignEmployees(ctx context.Context, id string, employeeIDs []string) error {
	c := call{
		method: http.MethodPost,
		path:   "/projects/" + escape(id) + "/assign",
		body:   assignRequest{EmployeeIDs: employeeIDs},
		denied: "Access denied: Only admins can assign employees",
	}
	return cl.do(ctx, c, nil)
}

func (cl *Client) ProjectMessages(ctx context.Context, id string) ([]domain.Message, error) {
	var env envelope[[]domain.Message]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/projects/" + escape(id) + "/messages", denied: "Access denied to project messages"}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
