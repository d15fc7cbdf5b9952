package domain

import "time"

// NotificationKind classifies a detected service request transition.
type NotificationKind string

const (
	NotifyApproved    NotificationKind = "approved"
	NotifyRejected    NotificationKind = "rejected"
	NotifyWorkStarted NotificationKind = "work_started"
	NotifyCompleted   NotificationKind = "completed"
)

// ClassifyTransition maps a from->to status pair to a notification kind.
// Pairs not listed produce no notification.
func ClassifyTransition(from, to ServiceRequestStatus) (NotificationKind, bool) {
	switch {
	case from == RequestPending && to == RequestApproved:
		return NotifyApproved, true
	case from == RequestPending && to == RequestRejected:
		return NotifyRejected, true
	case to == RequestActive:
		return NotifyWorkStarted, true
	case to == RequestCompleted:
		return NotifyCompleted, true
	}
	return "", false
}

// Notification is a user-facing event raised by the poller.
type Notification struct {
	ID          string               `json:"id"`
	Kind        NotificationKind     `json:"kind"`
	RequestID   string               `json:"request_id"`
	From        ServiceRequestStatus `json:"from"`
	To          ServiceRequestStatus `json:"to"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	At          time.Time            `json:"at"`
}
