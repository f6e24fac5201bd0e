package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/services"
)

type UploadHandler struct {
	interviewService services.InterviewService
	parser           services.DocumentParser
	maxFileSize      int64
}

func NewUploadHandler(
	interviewService services.InterviewService,
	parser services.DocumentParser,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		interviewService: interviewService,
		parser:           parser,
		maxFileSize:      maxFileSize,
	}
}

// HandleUpload handles POST /upload. Both documents are required; their
// content is decoded to text and resets the session.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	resumeFile, err := h.formFile(form, "resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	jobFile, err := h.formFile(form, "job_description")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var formSessionID string
	if values := form.Value["session_id"]; len(values) > 0 {
		formSessionID = values[0]
	}
	sessionID, err := sessionIDFrom(c, formSessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	resume := h.parser.ParseUpload(resumeFile, "resume")
	jobDescription := h.parser.ParseUpload(jobFile, "job_description")

	session, err := h.interviewService.SubmitDocuments(c.UserContext(), sessionID, resume, jobDescription)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Success:   true,
		SessionID: session.ID.String(),
	})
}

func (h *UploadHandler) formFile(form *multipart.Form, field string) (*multipart.FileHeader, error) {
	files, exists := form.File[field]
	if !exists || len(files) == 0 {
		return nil, fmt.Errorf("%s file is required", field)
	}

	file := files[0]
	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return nil, fmt.Errorf("%s file too large. Max size: %d bytes", field, h.maxFileSize)
	}

	return file, nil
}
