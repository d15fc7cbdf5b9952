package domain

import (
	"errors"
	"fmt"
)

// Authentication and authorization.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrAccountInactive = errors.New("account inactive")
	ErrLoginFailed     = errors.New("login failed")
)

// Backend and transport.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrNetwork  = errors.New("network failure")
	ErrBackend  = errors.New("backend error")
)

// Local validation; these never reach the network.
var (
	ErrValidation          = errors.New("validation failed")
	ErrProgressRegression  = errors.New("progress cannot decrease")
	ErrProgressOutOfRange  = errors.New("progress must be between 0 and 100")
	ErrProjectCompleted    = errors.New("project is completed")
	ErrStatusNotSelectable = errors.New("status cannot be selected")
	ErrSubmissionInFlight  = errors.New("a submission for this project is already pending")
	ErrFieldLocked         = errors.New("field is not editable for this role")
)

// ErrReconciliationRequired marks a multi-step operation that stopped half way.
var ErrReconciliationRequired = errors.New("manual reconciliation required")

// inactiveMessage is shown whenever the backend reports a deactivated account.
const inactiveMessage = "Your account is inactive. Please contact your system administrator to activate your account."

// LoginError is returned by a failed login. Kind is ErrAccountInactive or
// ErrLoginFailed; Message is what the login surface shows.
type LoginError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *LoginError) Error() string { return e.Message }

// Is lets callers match on the classification sentinel.
func (e *LoginError) Is(target error) bool { return target == e.Kind }

func (e *LoginError) Unwrap() error { return e.Cause }

// Inactive reports whether the login failed because the account is deactivated.
func (e *LoginError) Inactive() bool { return e.Kind == ErrAccountInactive }

// NewLoginError classifies a backend login failure message.
func NewLoginError(message string, cause error) *LoginError {
	if message == "" {
		message = "Login failed. Please try again."
	}
	if IsInactiveMessage(message) {
		return &LoginError{Kind: ErrAccountInactive, Message: inactiveMessage, Cause: cause}
	}
	return &LoginError{Kind: ErrLoginFailed, Message: message, Cause: cause}
}

// ValidationError carries per-field messages for inline rendering.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IncompleteCompletionError is returned when a project was marked completed
// but forcing its progress to 100 failed afterwards.
type IncompleteCompletionError struct {
	ProjectID string
	Progress  int
	Cause     error
}

func (e *IncompleteCompletionError) Error() string {
	return fmt.Sprintf("project %s marked completed but progress is still %d%%: %v", e.ProjectID, e.Progress, e.Cause)
}

func (e *IncompleteCompletionError) Is(target error) bool {
	return target == ErrReconciliationRequired
}

func (e *IncompleteCompletionError) Unwrap() error { return e.Cause }
