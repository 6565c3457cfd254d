package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Notifier receives "complaint created" facts. Implementations must return
// without waiting for delivery.
type Notifier interface {
	NotifyCreated(complaint domain.Complaint)
}

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	notifier   Notifier
	logger     *zap.Logger
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Notifier      Notifier
	Logger        *zap.Logger
}

// ComplaintCreateInput describes complaint creation payload.
// ImageURL is the already-stored upload, if the caller attached one.
type ComplaintCreateInput struct {
	Title       string
	Description string
	OwnerID     string
	ImageURL    *string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// CreateComplaint stores a new PENDING complaint and schedules the owner's notification.
func (s *ComplaintService) CreateComplaint(ctx context.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		details["owner_id"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("title and description are required", details)
	}

	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Status:      domain.ComplaintStatusPending,
		OwnerID:     input.OwnerID,
	}
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) != "" {
		url := strings.TrimSpace(*input.ImageURL)
		complaint.ImageURL = &url
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	if s.notifier != nil {
		s.notifier.NotifyCreated(*complaint)
	}
	s.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("owner_id", complaint.OwnerID))
	return complaint, nil
}

// ListOwnComplaints returns the owner's complaints, most recent first.
func (s *ComplaintService) ListOwnComplaints(ctx context.Context, ownerID string) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return complaints, nil
}

// ListAllComplaints returns every complaint. Callers must restrict it to admins.
func (s *ComplaintService) ListAllComplaints(ctx context.Context) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return complaints, nil
}

// GetComplaint fetches a complaint visible to requester: its owner or an admin.
// Complaints owned by someone else are reported as not found.
func (s *ComplaintService) GetComplaint(ctx context.Context, requester *domain.User, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.lookup(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && (requester == nil || complaint.OwnerID != requester.ID) {
		return nil, complaintNotFound(complaintID)
	}
	return complaint, nil
}

// UpdateStatus sets a complaint's status. Any known status may replace any other;
// there is no forward-only ordering and no terminal state.
func (s *ComplaintService) UpdateStatus(ctx context.Context, complaintID, rawStatus string) (*domain.Complaint, error) {
	status, ok := domain.ParseComplaintStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status":  rawStatus,
			"allowed": domain.ComplaintStatuses,
		})
	}

	complaint, err := s.lookup(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	oldStatus := complaint.Status
	complaint.Status = status
	if err := s.complaints.UpdateStatus(ctx, complaint); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, complaintNotFound(complaintID)
		}
		return nil, apperrors.NewStorageError(err)
	}

	s.logger.Info("complaint status changed",
		zap.String("complaint_id", complaint.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(complaint.Status)))
	return complaint, nil
}

// GetStats returns complaint counts for every known status, zero-filled.
func (s *ComplaintService) GetStats(ctx context.Context) (domain.ComplaintStats, error) {
	raw, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	stats := make(domain.ComplaintStats, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		stats[status] = raw[status]
	}
	return stats, nil
}

func (s *ComplaintService) lookup(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, complaintNotFound(complaintID)
		}
		return nil, apperrors.NewStorageError(err)
	}
	return complaint, nil
}

func complaintNotFound(id string) error {
	return apperrors.NewNotFound("complaint", map[string]any{"id": id})
}
