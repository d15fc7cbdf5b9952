package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/vinodhini/portal/internal/core/domain"
)

func TestAuthHandler_Login_InvalidFormNeverCallsBackend(t *testing.T) {
	auth := &stubAuth{loginFn: func(ctx context.Context, email, password string) (*domain.Session, error) {
		t.Fatalf("login must not reach the backend")
		return nil, nil
	}}
	f := newFixture(t, "", &stubBackend{}, auth)

	_, err := f.call(t, NewAuthHandler().Login, http.MethodPost, `{"email":"nope","password":"abc"}`, "")

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["email"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("expected email and password messages, got %v", verr.Fields)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	auth := &stubAuth{loginFn: func(ctx context.Context, email, password string) (*domain.Session, error) {
		if email != "ana@example.com" || password != "secret1" {
			t.Fatalf("unexpected credentials: %s %s", email, password)
		}
		return &domain.Session{Credential: "tok", Identity: domain.Identity{UserID: "c1", Name: "Ana", Role: domain.RoleClient}}, nil
	}}
	f := newFixture(t, "", &stubBackend{}, auth)

	rec, err := f.call(t, NewAuthHandler().Login, http.MethodPost, `{"email":"ana@example.com","password":"secret1"}`, "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/dashboard" || resp.User.Role != domain.RoleClient {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Navigation) != 5 {
		t.Fatalf("expected 5 client menu items, got %d", len(resp.Navigation))
	}
	if f.ws.Poller() == nil {
		t.Fatalf("client login must start the notification poller")
	}
}

func TestAuthHandler_Login_InactiveAccount(t *testing.T) {
	auth := &stubAuth{loginFn: func(ctx context.Context, email, password string) (*domain.Session, error) {
		return nil, errors.New("Account is inactive")
	}}
	f := newFixture(t, "", &stubBackend{}, auth)

	_, err := f.call(t, NewAuthHandler().Login, http.MethodPost, `{"email":"ana@example.com","password":"secret1"}`, "")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected inactive classification, got %v", err)
	}
	if f.ws.Session.Current() != nil {
		t.Fatalf("failed login must leave the session anonymous")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newFixture(t, domain.RoleAdmin, &stubBackend{}, nil)

	rec, err := f.call(t, NewAuthHandler().Logout, http.MethodPost, "", "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if f.ws.Session.Current() != nil {
		t.Fatalf("identity must be cleared")
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	f := newFixture(t, "", &stubBackend{}, nil)

	rec, err := f.call(t, NewAuthHandler().ForgotPassword, http.MethodPost, `{"email":"ana@example.com"}`, "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}
