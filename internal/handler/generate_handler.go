package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/port"
	"github.com/karaulvitte2/VitteTZproject/internal/service"
)

// GenerationStore journals generated sections.
type GenerationStore interface {
	InsertGenerationLog(ctx context.Context, entry *domain.GenerationLog) error
}

// GenerateHandler serves section generation and the form metadata.
type GenerateHandler struct {
	sections *service.SectionService
	store    GenerationStore
}

func NewGenerateHandler(sections *service.SectionService, store GenerationStore) *GenerateHandler {
	return &GenerateHandler{sections: sections, store: store}
}

// Register sets up generation routes.
func (h *GenerateHandler) Register(api fiber.Router) {
	api.Post("/generate", h.generate)
	api.Get("/meta", h.meta)
}

type generateRequest struct {
	ProjectID          string `json:"project_id"`
	ProjectName        string `json:"project_name"`
	ProjectDomain      string `json:"project_domain"`
	ProjectDescription string `json:"project_description"`
	SectionName        string `json:"section_name"`
	Mode               string `json:"mode"`
}

func (h *GenerateHandler) generate(c fiber.Ctx) error {
	var body generateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if body.SectionName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "section_name is required"})
	}

	// A request naming a sample project without its own description picks up
	// the sample's fields.
	if body.ProjectDescription == "" && body.ProjectID != "" {
		if sample := domain.SampleProjectByID(body.ProjectID); sample != nil {
			if body.ProjectName == "" {
				body.ProjectName = sample.Name
			}
			if body.ProjectDomain == "" {
				body.ProjectDomain = sample.Domain
			}
			body.ProjectDescription = sample.Description
		}
	}

	req := domain.SectionRequest{
		ProjectName:        body.ProjectName,
		ProjectDomain:      body.ProjectDomain,
		ProjectDescription: body.ProjectDescription,
		SectionName:        body.SectionName,
		Mode:               body.Mode,
	}

	result, err := h.sections.Generate(c.Context(), req)
	if err != nil {
		if errors.Is(err, port.ErrUnknownMode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	mode := body.Mode
	if mode == "" {
		mode = h.sections.DefaultMode()
	}

	// Journal the attempt; a failed insert must not lose the generated text.
	entry := domain.GenerationLog{
		ProjectName:   req.ProjectName,
		ProjectDomain: req.ProjectDomain,
		SectionName:   req.SectionName,
		Mode:          mode,
		GeneratedText: result.Text,
		UsedChunks:    result.UsedChunks,
	}
	var logID int64
	if err := h.store.InsertGenerationLog(c.Context(), &entry); err != nil {
		slog.Error("failed to journal generated section", "error", err)
	} else {
		logID = entry.ID
	}

	return c.JSON(fiber.Map{
		"text":        result.Text,
		"used_chunks": result.UsedChunks,
		"log_id":      logID,
		"mode":        mode,
	})
}

func (h *GenerateHandler) meta(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"projects":     domain.SampleProjects,
		"sections":     domain.SectionNames,
		"modes":        h.sections.Modes(),
		"default_mode": h.sections.DefaultMode(),
	})
}
