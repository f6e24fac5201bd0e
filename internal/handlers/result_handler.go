package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/repositories"
)

type ResultHandler struct {
	interviewRepo repositories.InterviewRepository
}

func NewResultHandler(interviewRepo repositories.InterviewRepository) *ResultHandler {
	return &ResultHandler{
		interviewRepo: interviewRepo,
	}
}

// HandleGetInterview handles GET /interviews/:id.
func (h *ResultHandler) HandleGetInterview(c *fiber.Ctx) error {
	interviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid interview ID format",
		})
	}

	interview, err := h.interviewRepo.FindByID(interviewID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(interview)
}

// HandleListBySession handles GET /sessions/:id/interviews.
func (h *ResultHandler) HandleListBySession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	interviews, err := h.interviewRepo.FindBySession(sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID.String(),
		"interviews": interviews,
	})
}
