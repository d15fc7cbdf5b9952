package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

func collectionPath(collection string) (string, error) {
	switch collection {
	case ports.CollectionUsers, ports.CollectionEmployees, ports.CollectionClients:
		return "/" + collection, nil
	}
	return "", fmt.Errorf("gateway: unknown user collection %q", collection)
}

func (cl *Client) ListUsers(ctx context.Context, collection string, params ports.ListParams) ([]domain.User, domain.Page, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, domain.Page{}, err
	}
	var env envelope[[]domain.User]
	if err := cl.do(ctx, call{method: http.MethodGet, path: path, query: listQuery(params), denied: "Access denied to user list"}, &env); err != nil {
		return nil, domain.Page{}, err
	}
	return env.Data, pageOf(env.Pagination), nil
}

func (cl *Client) GetUser(ctx context.Context, collection, id string) (*domain.User, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodGet, path: path + "/" + escape(id), denied: "Access denied to this user profile"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) CreateUser(ctx context.Context, collection string, in ports.UserUpdate) (*domain.User, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodPost, path: path, body: in, denied: "Access denied: Only admins can create users"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) UpdateUser(ctx context.Context, collection, id string, in ports.UserUpdate) (*domain.User, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodPut, path: path + "/" + escape(id), body: in, denied: "Access denied to update this profile"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// PatchUser sends only the fields in `in`; the backend leaves the rest as is.
func (cl *Client) PatchUser(ctx context.Context, collection, id string, in ports.UserUpdate) (*domain.User, error) {
	path, err := collectionPath(collection)
	if err != nil {
		return nil, err
	}
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodPatch, path: path + "/" + escape(id), body: in, denied: "Access denied to update this profile"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DeleteUser(ctx context.Context, collection, id string) error {
	path, err := collectionPath(collection)
	if err != nil {
		return err
	}
	return cl.do(ctx, call{method: http.MethodDelete, path: path + "/" + escape(id), denied: "Access denied: Only admins can delete users"}, nil)
}

func (cl *Client) Me(ctx context.Context) (*domain.User, error) {
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/users/me", denied: "Access denied to user profile"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) UpdateMe(ctx context.Context, in ports.UserUpdate) (*domain.User, error) {
	var env envelope[domain.User]
	if err := cl.do(ctx, call{method: http.MethodPut, path: "/users/me", body: in, denied: "Access denied to update profile"}, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (cl *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var env envelope[domain.DashboardStats]
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/users/dashboard/stats", denied: "Access denied to dashboard statistics"}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
