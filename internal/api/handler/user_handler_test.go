package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

func TestProfileHandler_EmployeeCannotEditSalary(t *testing.T) {
	backend := &stubBackend{
		updateMeFn: func(context.Context, ports.UserUpdate) (*domain.User, error) {
			t.Fatalf("locked field must not reach the backend")
			return nil, nil
		},
	}
	f := newFixture(t, domain.RoleEmployee, backend, nil)

	_, err := f.call(t, NewProfileHandler().Update, http.MethodPut, `{"name":"Ana Lima","salary":9000}`, "")
	if !errors.Is(err, domain.ErrFieldLocked) {
		t.Fatalf("expected locked field error, got %v", err)
	}
}

func TestProfileHandler_ClientUpdatesPhone(t *testing.T) {
	var got ports.UserUpdate
	backend := &stubBackend{
		updateMeFn: func(_ context.Context, in ports.UserUpdate) (*domain.User, error) {
			got = in
			return &domain.User{ID: "client-1", Name: "Ana", Phone: "+1 (555) 010-0000", Role: domain.RoleClient}, nil
		},
	}
	f := newFixture(t, domain.RoleClient, backend, nil)

	rec, err := f.call(t, NewProfileHandler().Update, http.MethodPut, `{"phone":"+1 (555) 010-0000"}`, "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(got) != 1 || got[domain.FieldPhone] != "+1 (555) 010-0000" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestProfileHandler_InvalidPhone(t *testing.T) {
	f := newFixture(t, domain.RoleClient, &stubBackend{}, nil)

	_, err := f.call(t, NewProfileHandler().Update, http.MethodPut, `{"phone":"12"}`, "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["phone"] == "" {
		t.Fatalf("expected phone validation error, got %v", err)
	}
}

func TestUserHandler_CreateEmployeeRequiresSalary(t *testing.T) {
	f := newFixture(t, domain.RoleAdmin, &stubBackend{}, nil)
	h := NewUserHandler(ports.CollectionEmployees, domain.RoleEmployee)

	_, err := f.call(t, h.Create, http.MethodPost, `{"name":"Ana Lima","email":"ana@example.com","password":"secret1"}`, "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["salary"] == "" {
		t.Fatalf("expected salary validation error, got %v", err)
	}
}

func TestUserHandler_CreateEmployee(t *testing.T) {
	var got ports.UserUpdate
	backend := &stubBackend{
		createUserFn: func(_ context.Context, collection string, in ports.UserUpdate) (*domain.User, error) {
			if collection != ports.CollectionEmployees {
				t.Fatalf("unexpected collection %s", collection)
			}
			got = in
			return &domain.User{ID: "e9", Name: "Ana Lima", Role: domain.RoleEmployee}, nil
		},
	}
	f := newFixture(t, domain.RoleAdmin, backend, nil)
	h := NewUserHandler(ports.CollectionEmployees, domain.RoleEmployee)

	rec, err := f.call(t, h.Create, http.MethodPost, `{"name":"Ana Lima","email":"ana@example.com","password":"secret1","salary":"4200.50"}`, "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got[domain.FieldRole] != "employee" {
		t.Fatalf("role must be forced to employee, got %v", got[domain.FieldRole])
	}
}

func TestUserHandler_PatchSendsOnlyTouchedFields(t *testing.T) {
	var got ports.UserUpdate
	backend := &stubBackend{
		patchUserFn: func(_ context.Context, collection, id string, in ports.UserUpdate) (*domain.User, error) {
			if collection != ports.CollectionClients || id != "c7" {
				t.Fatalf("unexpected target %s/%s", collection, id)
			}
			got = in
			return &domain.User{ID: id, Status: domain.UserStatusInactive}, nil
		},
	}
	f := newFixture(t, domain.RoleAdmin, backend, nil)
	h := NewUserHandler(ports.CollectionClients, domain.RoleClient)

	rec, err := f.call(t, h.Patch, http.MethodPatch, `{"status":"inactive"}`, "c7")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(got) != 1 || got[domain.FieldStatus] != "inactive" {
		t.Fatalf("unexpected payload: %v", got)
	}
}
