package domain

import (
	"errors"
	"testing"
)

func TestProject_PlanStatus(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		next    ProjectStatus
		want    StatusPlan
		wantErr error
	}{
		{"forward to in progress", Project{Status: ProjectActive}, ProjectInProgress, StatusPlan{Target: ProjectInProgress}, nil},
		{"backwards is allowed", Project{Status: ProjectInProgress}, ProjectPending, StatusPlan{Target: ProjectPending}, nil},
		{"completion forces progress", Project{Status: ProjectActive}, ProjectCompleted, StatusPlan{Target: ProjectCompleted, ForceProgress: true}, nil},
		{"same status is a no-op", Project{Status: ProjectActive}, ProjectActive, StatusPlan{Target: ProjectActive, Noop: true}, nil},
		{"completed is locked", Project{Status: ProjectCompleted}, ProjectActive, StatusPlan{}, ErrProjectCompleted},
		{"rejected not selectable", Project{Status: ProjectPending}, ProjectRejected, StatusPlan{}, ErrStatusNotSelectable},
		{"unknown not selectable", Project{Status: ProjectPending}, "archived", StatusPlan{}, ErrStatusNotSelectable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.project.PlanStatus(tt.next)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected plan %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestProject_CheckProgress(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		next    int
		wantErr error
	}{
		{"forward", Project{Status: ProjectActive, Progress: 40}, 60, nil},
		{"unchanged", Project{Status: ProjectActive, Progress: 40}, 40, nil},
		{"to max", Project{Status: ProjectInProgress, Progress: 99}, 100, nil},
		{"regression", Project{Status: ProjectActive, Progress: 60}, 40, ErrProgressRegression},
		{"above range", Project{Status: ProjectActive}, 101, ErrProgressOutOfRange},
		{"below range", Project{Status: ProjectActive}, -1, ErrProgressOutOfRange},
		{"completed locked", Project{Status: ProjectCompleted, Progress: 100}, 100, ErrProjectCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.project.CheckProgress(tt.next); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProject_Controls(t *testing.T) {
	open := Project{Status: ProjectInProgress, Progress: 30}

	c := open.Controls(RoleEmployee)
	if !c.StatusEditable || !c.ProgressEditable || c.MinProgress != 30 {
		t.Errorf("employee should edit an open project: %+v", c)
	}
	for _, s := range c.StatusOptions {
		if s == ProjectRejected {
			t.Errorf("rejected must not be offered")
		}
	}

	if c := open.Controls(RoleClient); c.StatusEditable || c.ProgressEditable || len(c.StatusOptions) != 0 {
		t.Errorf("client view must be read-only: %+v", c)
	}

	done := Project{Status: ProjectCompleted, Progress: 100}
	if c := done.Controls(RoleAdmin); c.StatusEditable || c.ProgressEditable || c.Reconcilable {
		t.Errorf("completed project must be locked: %+v", c)
	}

	stale := Project{Status: ProjectCompleted, Progress: 70}
	if c := stale.Controls(RoleEmployee); !c.Reconcilable || c.StatusEditable {
		t.Errorf("stale completion should only offer reconcile: %+v", c)
	}
	if c := stale.Controls(RoleClient); c.Reconcilable {
		t.Errorf("clients never reconcile")
	}
}
