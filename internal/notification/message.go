package notification

import (
	"fmt"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Message is an outbound mail handed to a transport.
type Message struct {
	ComplaintID string `json:"complaint_id"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

// NewComplaintCreatedMessage renders the acknowledgement sent to a complaint's owner.
func NewComplaintCreatedMessage(to string, complaint domain.Complaint) Message {
	var body strings.Builder
	body.WriteString("Dear User,\n\n")
	fmt.Fprintf(&body, "We have received your complaint regarding: %s.\n", complaint.Title)
	fmt.Fprintf(&body, "Status: %s\n\n", complaint.Status)
	fmt.Fprintf(&body, "Description:\n%s\n\n", complaint.Description)
	body.WriteString("Thank you for using JanSevak.")

	return Message{
		ComplaintID: complaint.ID,
		To:          to,
		Subject:     "New Complaint Received: " + complaint.Title,
		Body:        body.String(),
	}
}
