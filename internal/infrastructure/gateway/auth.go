package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vinodhini/portal/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Company    string `json:"company"`
	Department string `json:"department"`
}

type loginData struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

// Login implements ports.AuthGateway. A response with success=false is a
// failure even when the status is 2xx.
func (cl *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var env envelope[loginData]
	if err := cl.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: loginRequest{Email: email, Password: password}}, &env); err != nil {
		return nil, err
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &APIError{Status: http.StatusUnauthorized, Message: msg}
	}

	role, err := domain.ParseRole(env.Data.User.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: login response: %v", domain.ErrBackend, err)
	}
	id := env.Data.User.ID
	if id == "" {
		id = env.Data.User.UserID
	}
	return &domain.Session{
		Credential: env.Data.Token,
		Identity: domain.Identity{
			UserID:        id,
			Name:          env.Data.User.Name,
			Email:         env.Data.User.Email,
			Role:          role,
			Company:       env.Data.User.Company,
			Department:    env.Data.User.Department,
			SalaryVisible: domain.FieldVisible(role, domain.FieldSalary),
		},
	}, nil
}
