package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/mock-interviewer/internal/config"
	"alfredoptarigan/mock-interviewer/internal/handlers"
	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	interviewRepo := repositories.NewInterviewRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	documentParser := services.NewDocumentParser(storageService)

	gateway, err := services.NewModelGateway(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("❌ Failed to initialize model gateway: %v", err)
	}
	log.Printf("✅ Model gateway initialized (provider: %s)", cfg.LLM.Provider)

	promptBuilder, err := services.NewPromptBuilderFromConfig(cfg.LLM)
	if err != nil {
		log.Fatalf("❌ Failed to load prompts: %v", err)
	}

	// Interview archive is optional
	var worker services.Worker
	if cfg.Qdrant.Enabled {
		worker, err = initArchive(ctx, cfg, interviewRepo)
		if err != nil {
			log.Fatalf("❌ Failed to initialize interview archive: %v", err)
		}
		worker.Start(ctx)
		log.Println("✅ Archive worker started successfully")
	}

	var archiveQueue services.ArchiveQueue
	if worker != nil {
		archiveQueue = worker
	}

	interviewService := services.NewInterviewService(
		services.NewSessionStore(),
		promptBuilder,
		gateway,
		interviewRepo,
		archiveQueue,
	)
	log.Println("✅ Interview service initialized")

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(interviewService, documentParser, cfg.Storage.MaxFileSize)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	resultHandler := handlers.NewResultHandler(interviewRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "AI Mock Interviewer API",
		// Model calls are synchronous, so the write timeout has to outlast them.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		BodyLimit:    int(2*cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.SessionHeader,
	}))

	// Routes
	api := app.Group("/api/v1")
	handlers.RegisterRoutes(api, uploadHandler, interviewHandler, resultHandler)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Mock Interviewer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/start_interview",
				"POST /api/v1/interview",
				"POST /api/v1/end_interview",
				"GET /api/v1/sessions/:id",
				"GET /api/v1/sessions/:id/interviews",
				"GET /api/v1/interviews/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if worker != nil {
			worker.Stop()
		}
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func initArchive(ctx context.Context, cfg *config.Config, repo repositories.InterviewRepository) (services.Worker, error) {
	embedder, err := services.NewGeminiService(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model)
	if err != nil {
		return nil, err
	}

	index, err := services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		return nil, err
	}
	if err := index.InitCollection(ctx); err != nil {
		return nil, err
	}

	archive := services.NewArchiveService(repo, embedder, index)
	return services.NewWorker(repo, archive, cfg.Worker.Concurrency, cfg.Worker.PollInterval), nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
