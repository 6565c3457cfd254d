package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/storage"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const imageField = "image"

// ComplaintsHandler exposes the complaint lifecycle over HTTP.
type ComplaintsHandler struct {
	service *service.ComplaintService
	files   storage.FileStore
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService, files storage.FileStore) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService, files: files}
}

// CreateComplaint POST /api/complaints.
// Accepts multipart/form-data (title, description, optional image) or JSON without an image.
func (h *ComplaintsHandler) CreateComplaint(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var form dto.CreateComplaintForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" {
		return apperrors.NewValidationError("title and description are required", nil)
	}

	imageURL, err := h.storeImage(c)
	if err != nil {
		return err
	}

	complaint, err := h.service.CreateComplaint(c.UserContext(), service.ComplaintCreateInput{
		Title:       form.Title,
		Description: form.Description,
		OwnerID:     principal.UserID(),
		ImageURL:    imageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// ListOwn GET /api/complaints.
func (h *ComplaintsHandler) ListOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaints, err := h.service.ListOwnComplaints(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// ListAll GET /api/complaints/all.
func (h *ComplaintsHandler) ListAll(c *fiber.Ctx) error {
	complaints, err := h.service.ListAllComplaints(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// GetComplaint GET /api/complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.GetComplaint(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// UpdateStatus PATCH /api/complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Stats GET /api/complaints/stats.
func (h *ComplaintsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse(stats)})
}

func (h *ComplaintsHandler) storeImage(c *fiber.Ctx) (*string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart form", nil)
	}
	files := form.File[imageField]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, nil
	}
	if h.files == nil {
		return nil, apperrors.NewValidationError("image uploads are disabled", nil)
	}

	content, err := readFormFile(files[0])
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable image", nil)
	}
	url, err := h.files.Store(c.UserContext(), files[0].Filename, content)
	switch {
	case err == nil:
		return &url, nil
	case errors.Is(err, storage.ErrUnsupportedFile), errors.Is(err, storage.ErrFileTooLarge):
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": imageField})
	default:
		return nil, apperrors.NewStorageError(err)
	}
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

