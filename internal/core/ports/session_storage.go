package ports

import (
	"context"

	"github.com/vinodhini/portal/internal/core/domain"
)

// SessionStorage persists one browser session's credential and identity
// snapshot under two keys. Implementations write and clear both keys
// together, never one without the other.
type SessionStorage interface {
	// Load returns the stored session for namespace, or nil when none exists.
	Load(ctx context.Context, namespace string) (*domain.Session, error)
	Save(ctx context.Context, namespace string, session domain.Session) error
	Clear(ctx context.Context, namespace string) error
}

// Credentials is the read side of a session as seen by the gateway. Only the
// session store itself mutates the credential; Invalidate asks it to.
type Credentials interface {
	Credential() string
	Invalidate(ctx context.Context, reason error)
}
