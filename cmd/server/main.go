package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/unidoc/unioffice/v2/common/license"

	"github.com/karaulvitte2/VitteTZproject/internal/adapter/ai"
	"github.com/karaulvitte2/VitteTZproject/internal/adapter/store"
	"github.com/karaulvitte2/VitteTZproject/internal/handler"
	"github.com/karaulvitte2/VitteTZproject/internal/middleware"
	"github.com/karaulvitte2/VitteTZproject/internal/retrieval"
	"github.com/karaulvitte2/VitteTZproject/internal/service"
	"github.com/karaulvitte2/VitteTZproject/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			slog.Error("failed to set document library license", "error", err)
			os.Exit(1)
		}
	}

	settings, err := config.LoadRAGSettings(cfg.ModesPath)
	if err != nil {
		slog.Error("failed to load retrieval modes", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting TZ Generator",
		"port", cfg.Port,
		"llm_model", cfg.LLMModel,
		"default_mode", settings.DefaultMode,
		"top_k", settings.TopK,
	)

	// ── Retrieval artifacts ──────────────────────────────────────────────
	chunks, err := retrieval.LoadCorpus(cfg.CorpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	index, err := retrieval.LoadIndex(cfg.VectorizerPath, cfg.MatrixPath)
	if err != nil {
		slog.Error("failed to load index", "error", err)
		os.Exit(1)
	}
	retriever, err := retrieval.NewRetriever(chunks, index)
	if err != nil {
		slog.Error("corpus and index do not match", "error", err)
		os.Exit(1)
	}
	slog.Info("retrieval index ready", "chunks", retriever.Size())

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(context.Background()); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	llm := ai.NewProxyAPIProvider(ai.Config{
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	})

	// ── Services ─────────────────────────────────────────────────────────
	sectionService := service.NewSectionService(settings, retriever, llm)
	documentService := service.NewDocumentService(pgStore)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"model":   llm.ModelName(),
			"chunks":  retriever.Size(),
			"version": "1.0.0",
		})
	})

	// ── API Routes ───────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	generateHandler := handler.NewGenerateHandler(sectionService, pgStore)
	generateHandler.Register(api)

	historyHandler := handler.NewHistoryHandler(documentService)
	historyHandler.Register(api)

	// ── Start Server ─────────────────────────────────────────────────────
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
