package service

import (
	"sync"

	"github.com/vinodhini/portal/internal/core/domain"
)

const defaultFeedSize = 50

// NotificationFeed keeps the most recent notifications for display.
type NotificationFeed struct {
	mu    sync.Mutex
	size  int
	items []domain.Notification
}

// NewNotificationFeed returns a feed holding at most size items.
func NewNotificationFeed(size int) *NotificationFeed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &NotificationFeed{size: size}
}

// Notify implements ports.NotificationSink.
func (f *NotificationFeed) Notify(n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.size; over > 0 {
		f.items = append([]domain.Notification(nil), f.items[over:]...)
	}
}

// Recent returns the retained notifications, newest first.
func (f *NotificationFeed) Recent() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}
