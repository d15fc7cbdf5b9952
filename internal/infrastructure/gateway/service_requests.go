package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

func (cl *Client) ListServiceRequests(ctx context.Context, params ports.ListParams) ([]domain.ServiceRequest, domain.Page, error) {
	var env envelope[[]domain.ServiceRequest]
	err := cl.do(ctx, call{method: http.MethodGet, path: "/service-requests", query: listQuery(params), denied: "Access denied to service requests"}, &env)
	if err != nil {
		return nil, domain.Page{}, err
	}
	return env.Data, pageOf(env.Pagination), nil
}

// ClientServiceRequests returns every request owned by clientID. The
// notification poller calls this on each cycle.
func (cl *Client) ClientServiceRequests(ctx context.Context, clientID string) ([]domain.ServiceRequest, error) {
	var env envelope[[]domain.ServiceRequest]
	q := url.Values{"client_id": {clientID}}
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/service-requests", query: q, denied: "Access denied to service requests"}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (cl *Client) GetServiceRequest(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	var env envelope[domain.ServiceRequest]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/service-requests/" + escape(id)}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) CreateServiceRequest(ctx context.Context, in ports.CreateServiceRequestInput) (*domain.ServiceRequest, error) {
	var env envelope[domain.ServiceRequest]
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/service-requests", body: in, denied: "Access denied: Only clients can request services"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DeleteServiceRequest(ctx context.Context, id string) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: "/service-requests/" + escape(id)}, nil)
}

type approveRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// ApproveServiceRequest approves a pending request; the backend creates the
// project and returns the request with its project id set.
func (cl *Client) ApproveServiceRequest(ctx context.Context, id string, employeeIDs []string) (*domain.ServiceRequest, error) {
	var env envelope[domain.ServiceRequest]
	c := call{
		method: http.MethodPost,
		path:   "/service-requests/" + escape(id) + "/approve",
		body:   approveRequest{EmployeeIDs: employeeIDs},
		denied: "Access denied: Only admins can approve service requests",
	}
	if err := cl.do(ctx, c, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) RejectServiceRequest(ctx context.Context, id string) error {
	c := call{
		method: http.MethodPost,
		path:   "/service-requests/" + escape(id) + "/reject",
		denied: "Access denied: Only admins can reject service requests",
	}
	return cl.do(ctx, c, nil)
}
