package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

// SessionHeader carries the interview session id. Requests without it use the
// most recently uploaded session.
const SessionHeader = "X-Session-ID"

func sessionIDFrom(c *fiber.Ctx, bodyID string) (uuid.UUID, error) {
	raw := c.Get(SessionHeader)
	if raw == "" {
		raw = bodyID
	}
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, repositories.ErrInterviewNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidHistory):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrTransportFailure):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
