package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

// ProjectService applies the employee-facing status/progress rules before
// anything reaches the backend. Every method takes the caller's committed
// project and returns the new committed project; on error the returned value
// is the input unchanged, except for the half-finished completion case which
// returns what the backend confirmed alongside *domain.IncompleteCompletionError.
type ProjectService struct {
	projects        ports.ProjectGateway
	reconciliations ports.ReconciliationRepository
	log             zerolog.Logger
	now             func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewProjectService returns a ProjectService writing through projects.
func NewProjectService(projects ports.ProjectGateway, reconciliations ports.ReconciliationRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects:        projects,
		reconciliations: reconciliations,
		log:             log,
		now:             time.Now,
		inflight:        make(map[string]struct{}),
	}
}

// SetProgress moves a project's progress forward. Regressions and edits on a
// completed project are refused without a network call.
func (s *ProjectService) SetProgress(ctx context.Context, actor domain.Identity, current domain.Project, progress int) (domain.Project, error) {
	if err := checkActor(actor); err != nil {
		return current, err
	}
	if err := current.CheckProgress(progress); err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("progress", "rejected").Inc()
		return current, err
	}

	release, err := s.begin(current.ID)
	if err != nil {
		return current, err
	}
	defer release()

	updated, err := s.projects.UpdateProgress(ctx, current.ID, progress)
	if err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("progress", "failed").Inc()
		return current, fmt.Errorf("update progress: %w", err)
	}

	committed := current
	committed.Progress = progress
	if updated != nil {
		committed = *updated
	}
	metrics.ProjectTransitionsTotal.WithLabelValues("progress", "committed").Inc()
	s.log.Info().Str("project_id", current.ID).Str("user_id", actor.UserID).
		Int("from", current.Progress).Int("to", committed.Progress).Msg("project progress updated")
	return committed, nil
}

// SetStatus changes a project's status. Moving to completed is one compound
// transition: the status write, then a forced progress write to 100. When
// the second write fails the project is left completed with stale progress;
// that state is returned with an *domain.IncompleteCompletionError and
// recorded for reconciliation.
func (s *ProjectService) SetStatus(ctx context.Context, actor domain.Identity, current domain.Project, next domain.ProjectStatus) (domain.Project, error) {
	if err := checkActor(actor); err != nil {
		return current, err
	}
	plan, err := current.PlanStatus(next)
	if err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("status", "rejected").Inc()
		return current, err
	}
	if plan.Noop {
		return current, nil
	}

	release, err := s.begin(current.ID)
	if err != nil {
		return current, err
	}
	defer release()

	target := plan.Target
	updated, err := s.projects.UpdateProject(ctx, current.ID, ports.ProjectUpdate{Status: &target})
	if err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("status", "failed").Inc()
		return current, fmt.Errorf("update status: %w", err)
	}

	committed := current
	if updated != nil {
		committed = *updated
	}
	committed.Status = target

	if !plan.ForceProgress {
		metrics.ProjectTransitionsTotal.WithLabelValues("status", "committed").Inc()
		s.log.Info().Str("project_id", current.ID).Str("user_id", actor.UserID).
			Str("from", string(current.Status)).Str("to", string(target)).Msg("project status updated")
		return committed, nil
	}

	forced, err := s.forceComplete(ctx, actor, committed)
	if err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("status", "partial").Inc()
		return committed, err
	}
	metrics.ProjectTransitionsTotal.WithLabelValues("status", "committed").Inc()
	s.log.Info().Str("project_id", current.ID).Str("user_id", actor.UserID).Msg("project completed")
	return forced, nil
}

// Reconcile retries the forced progress write for a project that was left
// completed with progress below 100.
func (s *ProjectService) Reconcile(ctx context.Context, actor domain.Identity, current domain.Project) (domain.Project, error) {
	if err := checkActor(actor); err != nil {
		return current, err
	}
	if !current.NeedsReconciliation() {
		return current, nil
	}

	release, err := s.begin(current.ID)
	if err != nil {
		return current, err
	}
	defer release()

	forced, err := s.forceComplete(ctx, actor, current)
	if err != nil {
		metrics.ProjectTransitionsTotal.WithLabelValues("reconcile", "failed").Inc()
		return current, err
	}
	metrics.ProjectTransitionsTotal.WithLabelValues("reconcile", "committed").Inc()
	return forced, nil
}

// OpenReconciliations lists completions still waiting for their progress write.
func (s *ProjectService) OpenReconciliations(ctx context.Context) ([]ports.Reconciliation, error) {
	return s.reconciliations.ListOpen(ctx)
}

func (s *ProjectService) forceComplete(ctx context.Context, actor domain.Identity, completed domain.Project) (domain.Project, error) {
	updated, err := s.projects.UpdateProgress(ctx, completed.ID, domain.MaxProgress)
	if err != nil {
		incomplete := &domain.IncompleteCompletionError{
			ProjectID: completed.ID,
			Progress:  completed.Progress,
			Cause:     err,
		}
		s.log.Error().Err(err).Str("project_id", completed.ID).Int("progress", completed.Progress).
			Msg("project completed but progress was not forced to 100")
		rec := ports.Reconciliation{
			ProjectID:  completed.ID,
			Progress:   completed.Progress,
			UserID:     actor.UserID,
			Reason:     err.Error(),
			RecordedAt: s.now().UTC(),
		}
		if recErr := s.reconciliations.Record(ctx, rec); recErr != nil {
			s.log.Error().Err(recErr).Str("project_id", completed.ID).Msg("failed to record reconciliation")
		}
		return completed, incomplete
	}

	out := completed
	if updated != nil {
		out = *updated
	}
	out.Status = domain.ProjectCompleted
	out.Progress = domain.MaxProgress

	if err := s.reconciliations.Resolve(ctx, completed.ID, s.now().UTC()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn().Err(err).Str("project_id", completed.ID).Msg("failed to resolve reconciliation")
	}
	return out, nil
}

// begin marks a project as having a pending submission. A second submission
// for the same project is refused until release is called.
func (s *ProjectService) begin(projectID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[projectID]; busy {
		return nil, domain.ErrSubmissionInFlight
	}
	s.inflight[projectID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, projectID)
		s.mu.Unlock()
	}, nil
}

func checkActor(actor domain.Identity) error {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleEmployee:
		return nil
	}
	return fmt.Errorf("%w: %s may not edit projects", domain.ErrForbidden, actor.Role)
}
