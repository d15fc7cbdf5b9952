package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a directory record as returned by the backend. Employees and
// clients are users with the matching role.
type User struct {
	ID         string           `json:"user_id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone,omitempty"`
	Role       Role             `json:"role"`
	Department string           `json:"department,omitempty"`
	Company    string           `json:"company,omitempty"`
	Address    string           `json:"address,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty"`
	Status     string           `json:"status,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Active reports whether the account may log in.
func (u User) Active() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// RedactFor hides fields the viewer may not see.
func (u User) RedactFor(viewer Role) User {
	if !FieldVisible(viewer, FieldSalary) {
		u.Salary = nil
	}
	return u
}
