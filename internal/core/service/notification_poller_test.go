package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vinodhini/portal/internal/core/domain"
)

func newPoller(src *stubSource, sink *memSink) *NotificationPoller {
	return NewNotificationPoller(src, "c1", sink, time.Hour, zerolog.Nop())
}

func TestNotificationPoller_FirstCycleIsBaseline(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestApproved), request("r2", domain.RequestPending))
	p := newPoller(src, sink)

	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, events)
	require.Zero(t, p.Unread())
}

func TestNotificationPoller_ApprovalEmittedOnce(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestPending))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(nil, request("r1", domain.RequestApproved))
	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.NotifyApproved, events[0].Kind)
	require.NotEmpty(t, events[0].ID)
	require.False(t, events[0].At.IsZero())

	events, err = p.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, 1, p.Unread())
	require.Equal(t, 1, sink.count())
}

func TestNotificationPoller_NewAndVanishedRequestsAreSilent(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestPending))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(nil, request("r2", domain.RequestApproved))
	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestNotificationPoller_FailedFetchKeepsBaseline(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestPending))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(domain.ErrNetwork)
	_, err = p.Poll(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)

	src.set(nil, request("r1", domain.RequestRejected))
	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.NotifyRejected, events[0].Kind)
}

func TestNotificationPoller_SkipsOverlappingCycle(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	p := newPoller(src, sink)

	entered, release := src.hold()
	done := make(chan error, 1)
	go func() {
		_, err := p.Poll(context.Background())
		done <- err
	}()
	<-entered

	_, err := p.Poll(context.Background())
	require.ErrorIs(t, err, ErrPollInFlight)
	require.Equal(t, 1, src.callCount())

	close(release)
	require.NoError(t, <-done)
}

func TestNotificationPoller_StopDiscardsPendingCycle(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestPending))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(nil, request("r1", domain.RequestApproved))
	entered, release := src.hold()
	p.Start(context.Background())
	<-entered
	p.Stop()
	require.False(t, p.Running())
	close(release)

	// The discarded cycle must not move the baseline, so the next one still
	// sees pending -> approved.
	var events []domain.Notification
	require.Eventually(t, func() bool {
		var err error
		events, err = p.Poll(context.Background())
		return !errors.Is(err, ErrPollInFlight)
	}, time.Second, 5*time.Millisecond)
	require.Len(t, events, 1)
	require.Equal(t, 1, p.Unread())
	require.Equal(t, 1, sink.count())
}

func TestNotificationPoller_UnclassifiedChangeCountsAsUnread(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestApproved))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(nil, request("r1", domain.RequestRejected))
	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, 1, p.Unread())
	require.Zero(t, sink.count())
}

func TestNotificationPoller_NothingDeliveredAfterStop(t *testing.T) {
	type stopped struct {
		p      *NotificationPoller
		sink   *memSink
		sent   int
		unread int
	}
	const runs = 200
	all := make([]stopped, 0, runs)
	for i := 0; i < runs; i++ {
		src, sink := &stubSource{}, &memSink{}
		src.set(nil, request("r1", domain.RequestPending))
		p := newPoller(src, sink)
		_, err := p.Poll(context.Background())
		require.NoError(t, err)

		src.set(nil, request("r1", domain.RequestApproved))
		p.Start(context.Background())
		p.Stop()
		all = append(all, stopped{p: p, sink: sink, sent: sink.count(), unread: p.Unread()})
	}

	time.Sleep(50 * time.Millisecond)
	for i, s := range all {
		require.Equal(t, s.sent, s.sink.count(), "run %d delivered after Stop", i)
		require.Equal(t, s.unread, s.p.Unread(), "run %d counted after Stop", i)
	}
}

func TestNotificationPoller_Clear(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	src.set(nil, request("r1", domain.RequestPending), request("r2", domain.RequestApproved))
	p := newPoller(src, sink)
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	src.set(nil, request("r1", domain.RequestApproved), request("r2", domain.RequestActive))
	_, err = p.Poll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, p.Unread())

	p.Clear()
	require.Zero(t, p.Unread())

	events, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Empty(t, events, "clear keeps the baseline")
}

func TestNotificationPoller_StartStop(t *testing.T) {
	src, sink := &stubSource{}, &memSink{}
	p := newPoller(src, sink)

	p.Start(context.Background())
	p.Start(context.Background())
	require.True(t, p.Running())
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	require.False(t, p.Running())
}

func TestDetectTransitions(t *testing.T) {
	prev := []domain.ServiceRequest{
		request("a", domain.RequestPending),
		request("b", domain.RequestApproved),
		request("c", domain.RequestActive),
		request("d", domain.RequestApproved),
	}
	cur := []domain.ServiceRequest{
		request("a", domain.RequestApproved),
		request("b", domain.RequestActive),
		request("c", domain.RequestCompleted),
		request("d", domain.RequestRejected),
	}

	got, changed := DetectTransitions(prev, cur)
	require.Equal(t, 4, changed)
	kinds := make([]domain.NotificationKind, 0, len(got))
	for _, n := range got {
		kinds = append(kinds, n.Kind)
	}
	require.Equal(t, []domain.NotificationKind{domain.NotifyApproved, domain.NotifyWorkStarted, domain.NotifyCompleted}, kinds)
	require.Contains(t, got[0].Description, `"Request a"`)
}

func TestNotificationFeed_Bounded(t *testing.T) {
	f := NewNotificationFeed(3)
	for i := 0; i < 5; i++ {
		f.Notify(domain.Notification{ID: fmt.Sprint(i)})
	}

	recent := f.Recent()
	require.Len(t, recent, 3)
	require.Equal(t, "4", recent[0].ID)
	require.Equal(t, "2", recent[2].ID)
}
