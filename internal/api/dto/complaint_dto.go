package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintForm is the multipart form for POST /api/complaints.
// The optional image arrives as the "image" file part.
type CreateComplaintForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

// UpdateStatusRequest payload for PATCH /api/complaints/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      domain.ComplaintStatus `json:"status"`
	ImageURL    *string                `json:"image_url"`
	OwnerID     string                 `json:"owner_id"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		ImageURL:    c.ImageURL,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
	}
}

// NewComplaintList maps a slice, never returning nil.
func NewComplaintList(complaints []domain.Complaint) []ComplaintResponse {
	items := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, NewComplaintResponse(&complaints[i]))
	}
	return items
}

// StatsResponse maps every status to its count.
type StatsResponse map[domain.ComplaintStatus]int64
