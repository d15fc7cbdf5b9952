package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

// DefaultPollInterval is how often a client's service requests are re-fetched.
const DefaultPollInterval = 30 * time.Second

// ErrPollInFlight is returned when a cycle is requested while another one
// has not resolved yet.
var ErrPollInFlight = errors.New("poll cycle already in flight")

// ServiceRequestSource fetches one client's service requests.
type ServiceRequestSource interface {
	ClientServiceRequests(ctx context.Context, clientID string) ([]domain.ServiceRequest, error)
}

// NotificationPoller surfaces status changes on a client's service requests
// by diffing successive snapshots. At most one fetch-and-diff cycle is in
// flight; a tick that finds one pending is skipped.
type NotificationPoller struct {
	source   ServiceRequestSource
	clientID string
	sink     ports.NotificationSink
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string

	cycle *semaphore.Weighted

	mu         sync.Mutex
	previous   []domain.ServiceRequest
	unread     int
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewNotificationPoller returns a stopped poller for clientID.
func NewNotificationPoller(source ServiceRequestSource, clientID string, sink ports.NotificationSink, interval time.Duration, log zerolog.Logger) *NotificationPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &NotificationPoller{
		source:   source,
		clientID: clientID,
		sink:     sink,
		interval: interval,
		log:      log.With().Str("client_id", clientID).Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
		cycle:    semaphore.NewWeighted(1),
	}
}

// ClientID is the client whose requests this poller watches.
func (p *NotificationPoller) ClientID() string { return p.clientID }

// Start runs an immediate cycle and then one per interval until Stop or ctx
// is cancelled. Calling Start on a running poller does nothing.
func (p *NotificationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	gen := p.generation
	p.mu.Unlock()

	metrics.ActivePollers.Inc()
	go p.run(ctx, gen, done)
}

// Stop cancels scheduling. Every cycle started by this run, including one
// still waiting on the backend, is discarded. Once Stop returns nothing
// reaches the sink or the unread count.
func (p *NotificationPoller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.cancel = nil
	p.generation++
	done := p.done
	p.mu.Unlock()

	<-done
	metrics.ActivePollers.Dec()
}

// Running reports whether the poller is scheduled.
func (p *NotificationPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// run schedules cycles for the run identified by gen.
func (p *NotificationPoller) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	go p.tick(ctx, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.tick(ctx, gen)
		}
	}
}

func (p *NotificationPoller) tick(ctx context.Context, gen uint64) {
	if ctx.Err() != nil {
		return
	}
	// In-flight fetches outlive Stop; the generation check drops their result.
	if _, err := p.poll(context.WithoutCancel(ctx), gen); err != nil && !errors.Is(err, ErrPollInFlight) {
		p.log.Warn().Err(err).Msg("service request poll failed")
	}
}

// Poll runs one fetch-and-diff cycle and returns the notifications it raised.
// The fetched snapshot becomes the new baseline whether or not anything
// changed. A failed fetch leaves the baseline untouched.
func (p *NotificationPoller) Poll(ctx context.Context) ([]domain.Notification, error) {
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()
	return p.poll(ctx, gen)
}

// poll is one cycle on behalf of generation gen. A cycle whose generation
// was retired by Stop, before or after the fetch, commits nothing.
func (p *NotificationPoller) poll(ctx context.Context, gen uint64) ([]domain.Notification, error) {
	if !p.cycle.TryAcquire(1) {
		metrics.PollCyclesTotal.WithLabelValues("skipped").Inc()
		return nil, ErrPollInFlight
	}
	defer p.cycle.Release(1)

	if !p.current(gen) {
		metrics.PollCyclesTotal.WithLabelValues("discarded").Inc()
		return nil, nil
	}

	current, err := p.source.ClientServiceRequests(ctx, p.clientID)
	if err != nil {
		metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch service requests: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		metrics.PollCyclesTotal.WithLabelValues("discarded").Inc()
		return nil, nil
	}
	events, changed := DetectTransitions(p.previous, current)
	at := p.now().UTC()
	for i := range events {
		events[i].ID = p.newID()
		events[i].At = at
	}
	p.previous = append([]domain.ServiceRequest(nil), current...)
	p.unread += changed

	// Delivery stays under the lock: Stop must not return between the
	// generation check and Notify.
	metrics.PollCyclesTotal.WithLabelValues("ok").Inc()
	for _, n := range events {
		metrics.NotificationsEmittedTotal.WithLabelValues(string(n.Kind)).Inc()
		p.log.Info().Str("request_id", n.RequestID).Str("kind", string(n.Kind)).Msg("service request status changed")
		p.sink.Notify(n)
	}
	return events, nil
}

func (p *NotificationPoller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation
}

// Unread is the number of status changes seen since the last Clear,
// including changes that raise no notification.
func (p *NotificationPoller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// Clear acknowledges all notifications. The baseline snapshot is kept.
func (p *NotificationPoller) Clear() {
	p.mu.Lock()
	p.unread = 0
	p.mu.Unlock()
}

// DetectTransitions compares two snapshots. It returns one notification per
// request present in both whose status changed to a classified target, and
// the number of requests present in both whose status changed at all. New,
// vanished and unchanged requests count for nothing. ID and At are left for
// the caller to fill.
func DetectTransitions(previous, current []domain.ServiceRequest) ([]domain.Notification, int) {
	before := make(map[string]domain.ServiceRequestStatus, len(previous))
	for _, r := range previous {
		before[r.ID] = r.Status
	}

	var out []domain.Notification
	changed := 0
	for _, r := range current {
		from, seen := before[r.ID]
		if !seen || from == r.Status {
			continue
		}
		changed++
		kind, ok := domain.ClassifyTransition(from, r.Status)
		if !ok {
			continue
		}
		title, desc := describe(kind, r.Title)
		out = append(out, domain.Notification{
			Kind:        kind,
			RequestID:   r.ID,
			From:        from,
			To:          r.Status,
			Title:       title,
			Description: desc,
		})
	}
	return out, changed
}

func describe(kind domain.NotificationKind, request string) (string, string) {
	switch kind {
	case domain.NotifyApproved:
		return "Service Request Approved!", fmt.Sprintf("Your request %q has been approved and a project has been created.", request)
	case domain.NotifyRejected:
		return "Service Request Rejected", fmt.Sprintf("Your request %q has been rejected. Please contact support for more information.", request)
	case domain.NotifyWorkStarted:
		return "Project Started", fmt.Sprintf("Work has begun on your project %q.", request)
	case domain.NotifyCompleted:
		return "Project Completed!", fmt.Sprintf("Your project %q has been completed successfully.", request)
	}
	return string(kind), request
}
