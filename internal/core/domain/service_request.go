package domain

import "time"

// ServiceRequestStatus represents the lifecycle state of a service request.
type ServiceRequestStatus string

const (
	RequestPending   ServiceRequestStatus = "pending"
	RequestApproved  ServiceRequestStatus = "approved"
	RequestRejected  ServiceRequestStatus = "rejected"
	RequestActive    ServiceRequestStatus = "active"
	RequestCompleted ServiceRequestStatus = "completed"
)

// ServiceRequest is a client's request for work. Approval spawns a project
// server-side and sets ProjectID.
type ServiceRequest struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Status        ServiceRequestStatus `json:"status"`
	ClientID      string               `json:"client_id"`
	ProjectID     string               `json:"project_id,omitempty"`
	ServiceTypeID string               `json:"service_type_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Decidable reports whether an admin may still approve or reject the request.
func (r ServiceRequest) Decidable() bool {
	return r.Status == RequestPending
}
