package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// HandleStart handles POST /start_interview. The body is optional.
func (h *InterviewHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartInterviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
	}

	sessionID, err := sessionIDFrom(c, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	result, err := h.interviewService.StartInterview(c.UserContext(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.StartInterviewResponse{
		Question:  result.Text,
		SessionID: result.SessionID.String(),
	})
}

// HandleContinue handles POST /interview.
func (h *InterviewHandler) HandleContinue(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	sessionID, err := sessionIDFrom(c, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	result, err := h.interviewService.ContinueInterview(c.UserContext(), sessionID, req.Question, models.Transcript(req.History))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.ChatResponse{
		Reply:     result.Text,
		SessionID: result.SessionID.String(),
	})
}

// HandleEnd handles POST /end_interview. If the record cannot be saved the
// response is a 500 that still carries the generated feedback.
func (h *InterviewHandler) HandleEnd(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	sessionID, err := sessionIDFrom(c, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	result, err := h.interviewService.EndInterview(c.UserContext(), sessionID, models.Transcript(req.History))
	if err != nil {
		if errors.Is(err, services.ErrPersistFailed) && result != nil {
			msg := err.Error()
			return c.Status(fiber.StatusInternalServerError).JSON(models.FeedbackResponse{
				Feedback:  result.Feedback,
				SessionID: result.SessionID.String(),
				Error:     &msg,
			})
		}
		return errorResponse(c, err)
	}

	return c.JSON(models.FeedbackResponse{
		Feedback:    result.Feedback,
		InterviewID: result.InterviewID.String(),
		SessionID:   result.SessionID.String(),
	})
}

// HandleGetSession handles GET /sessions/:id.
func (h *InterviewHandler) HandleGetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	session, err := h.interviewService.GetSession(c.UserContext(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.SessionResponse{
		SessionID:      session.ID.String(),
		Phase:          string(session.Phase),
		Resume:         session.Resume,
		JobDescription: session.JobDescription,
		Transcript:     session.Transcript,
	})
}
