package domain

import (
	"fmt"
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectActive     ProjectStatus = "active"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectRejected   ProjectStatus = "rejected"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// selectableStatuses are the targets offered on the employee-facing status
// selector. Rejection is an admin decision taken elsewhere.
var selectableStatuses = []ProjectStatus{
	ProjectPending,
	ProjectActive,
	ProjectInProgress,
	ProjectCompleted,
}

// SelectableStatuses returns a copy of the employee-facing status targets.
func SelectableStatuses() []ProjectStatus {
	out := make([]ProjectStatus, len(selectableStatuses))
	copy(out, selectableStatuses)
	return out
}

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPending, ProjectActive, ProjectInProgress, ProjectCompleted, ProjectRejected:
		return true
	}
	return false
}

// Terminal reports whether no further employee edits are accepted.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectCompleted
}

// Selectable reports whether s may be chosen on the status selector.
func (s ProjectStatus) Selectable() bool {
	for _, st := range selectableStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Project is the portal's view of a backend project.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	ClientID    string        `json:"client_id"`
	EmployeeIDs []string      `json:"employee_ids"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// StatusPlan is the outcome of checking a requested status change.
type StatusPlan struct {
	Target ProjectStatus
	// ForceProgress is set when the change must be followed by a progress
	// write to MaxProgress.
	ForceProgress bool
	// Noop is set when the project already has the target status.
	Noop bool
}

// PlanStatus validates a status change requested through the employee path.
func (p Project) PlanStatus(next ProjectStatus) (StatusPlan, error) {
	if p.Status.Terminal() {
		return StatusPlan{}, fmt.Errorf("%w: status is locked once completed", ErrProjectCompleted)
	}
	if !next.Selectable() {
		return StatusPlan{}, fmt.Errorf("%w: %q", ErrStatusNotSelectable, next)
	}
	if next == p.Status {
		return StatusPlan{Target: next, Noop: true}, nil
	}
	return StatusPlan{Target: next, ForceProgress: next == ProjectCompleted}, nil
}

// CheckProgress validates a new progress value against the committed one.
func (p Project) CheckProgress(next int) error {
	if p.Status.Terminal() {
		return fmt.Errorf("%w: progress is locked once completed", ErrProjectCompleted)
	}
	if next < MinProgress || next > MaxProgress {
		return fmt.Errorf("%w: got %d", ErrProgressOutOfRange, next)
	}
	if next < p.Progress {
		return fmt.Errorf("%w: progress can only move forward (current %d%%, requested %d%%)", ErrProgressRegression, p.Progress, next)
	}
	return nil
}

// NeedsReconciliation reports a completed project whose progress was never
// forced to MaxProgress.
func (p Project) NeedsReconciliation() bool {
	return p.Status == ProjectCompleted && p.Progress < MaxProgress
}

// ProjectControls describes which edit controls a project view may offer.
type ProjectControls struct {
	StatusOptions    []ProjectStatus `json:"status_options"`
	StatusEditable   bool            `json:"status_editable"`
	ProgressEditable bool            `json:"progress_editable"`
	MinProgress      int             `json:"min_progress"`
	Reconcilable     bool            `json:"reconcilable"`
}

// Controls returns the controls offered to role for this project. Clients
// only ever see a read-only view.
func (p Project) Controls(role Role) ProjectControls {
	c := ProjectControls{MinProgress: p.Progress}
	if role == RoleClient {
		return c
	}
	c.Reconcilable = p.NeedsReconciliation()
	if p.Status.Terminal() {
		return c
	}
	c.StatusEditable = true
	c.ProgressEditable = true
	c.StatusOptions = SelectableStatuses()
	return c
}
