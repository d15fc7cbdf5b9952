package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// ── Service types ────────────────────────────────────────────────────────────

func (cl *Client) ListServiceTypes(ctx context.Context, status string) ([]domain.ServiceType, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var env envelope[[]domain.ServiceType]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/service-types", query: q}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (cl *Client) GetServiceType(ctx context.Context, id string) (*domain.ServiceType, error) {
	var env envelope[domain.ServiceType]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/service-types/" + escape(id)}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) CreateServiceType(ctx context.Context, in ports.ServiceTypeInput) (*domain.ServiceType, error) {
	var env envelope[domain.ServiceType]
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/service-types", body: in}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) UpdateServiceType(ctx context.Context, id string, in ports.ServiceTypeInput) (*domain.ServiceType, error) {
	var env envelope[domain.ServiceType]
	if err := cl.do(ctx, call{method: http.MethodPut, path: "/service-types/" + escape(id), body: in}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DeleteServiceType(ctx context.Context, id string) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: "/service-types/" + escape(id)}, nil)
}

// ── Messages ─────────────────────────────────────────────────────────────────

func (cl *Client) ListMessages(ctx context.Context, params ports.ListParams, projectID string) ([]domain.Message, domain.Page, error) {
	q := listQuery(params)
	if projectID != "" {
		q.Set("project_id", projectID)
	}
	var env envelope[[]domain.Message]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/messages", query: q, denied: "Access denied to messages"}, &env); err != nil {
		return nil, domain.Page{}, err
	}
	return env.Data, pageOf(env.Pagination), nil
}

func (cl *Client) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var env envelope[domain.Message]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/messages/" + escape(id), denied: "Access denied to this message"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

type messageRequest struct {
	Content   string `json:"content"`
	ProjectID string `json:"project_id"`
}

func (cl *Client) CreateMessage(ctx context.Context, projectID, content string) (*domain.Message, error) {
	var env envelope[domain.Message]
	c := call{method: http.MethodPost, path: "/messages", body: messageRequest{Content: content, ProjectID: projectID}, denied: "Access denied to send messages"}
	if err := cl.do(ctx, c, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DeleteMessage(ctx context.Context, id string) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: "/messages/" + escape(id), denied: "Access denied to delete this message"}, nil)
}

// Ping checks that the backend answers at all. Any HTTP response counts.
func (cl *Client) Ping(ctx context.Context) error {
	err := cl.do(ctx, call{method: http.MethodGet, path: "/service-types", query: url.Values{"status": {"active"}}}, nil)
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}
