package ports

import "github.com/vinodhini/portal/internal/core/domain"

// NotificationSink receives events raised by the notification poller.
type NotificationSink interface {
	Notify(n domain.Notification)
}
