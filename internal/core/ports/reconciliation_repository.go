package ports

import (
	"context"
	"time"
)

// Reconciliation records a project left at status=completed with stale
// progress because the forced progress write failed.
type Reconciliation struct {
	ProjectID  string
	Progress   int
	UserID     string
	Reason     string
	RecordedAt time.Time
	ResolvedAt *time.Time
}

// ReconciliationRepository stores open reconciliations until they are retried.
type ReconciliationRepository interface {
	Record(ctx context.Context, r Reconciliation) error
	Resolve(ctx context.Context, projectID string, at time.Time) error
	ListOpen(ctx context.Context) ([]Reconciliation, error)
}
