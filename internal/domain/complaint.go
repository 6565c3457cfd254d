package domain

import (
	"strings"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
)

// ComplaintStatuses lists every known status in display order.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
}

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	for _, known := range ComplaintStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Complaint is a user-submitted issue record.
// OwnerID, ImageURL and CreatedAt are fixed at creation; only Status changes afterwards.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Status      ComplaintStatus
	ImageURL    *string
	OwnerID     string
	CreatedAt   time.Time
}

// ComplaintStats maps each status to the number of complaints in it.
type ComplaintStats map[ComplaintStatus]int64

// ParseComplaintStatus normalizes case and surrounding whitespace.
// The second result is false for unknown values.
func ParseComplaintStatus(raw string) (ComplaintStatus, bool) {
	status := ComplaintStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return status, status.Valid()
}
