package domain

// Identity is the last known profile of the logged-in user.
type Identity struct {
	UserID        string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	Company       string `json:"company,omitempty"`
	Department    string `json:"department,omitempty"`
	SalaryVisible bool   `json:"salary_visible,omitempty"`
}

// Session pairs an identity with the bearer credential that proves it.
// A Session without a role or a credential is never stored.
type Session struct {
	Credential string   `json:"-"`
	Identity   Identity `json:"user"`
}

// Valid reports whether the session satisfies the storage invariant.
func (s *Session) Valid() bool {
	return s != nil && s.Credential != "" && s.Identity.Role.Valid()
}
