package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the interview API on router. result may be nil when
// no database is configured.
func RegisterRoutes(router fiber.Router, upload *UploadHandler, interview *InterviewHandler, result *ResultHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Post("/upload", upload.HandleUpload)
	router.Post("/start_interview", interview.HandleStart)
	router.Post("/interview", interview.HandleContinue)
	router.Post("/end_interview", interview.HandleEnd)
	router.Get("/sessions/:id", interview.HandleGetSession)

	if result != nil {
		router.Get("/interviews/:id", result.HandleGetInterview)
		router.Get("/sessions/:id/interviews", result.HandleListBySession)
	}
}
