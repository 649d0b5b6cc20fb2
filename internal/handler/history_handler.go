package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/karaulvitte2/VitteTZproject/internal/port"
	"github.com/karaulvitte2/VitteTZproject/internal/service"
)

const defaultHistoryLimit = 100

// HistoryHandler serves the generation journal and document assembly/export.
type HistoryHandler struct {
	documents *service.DocumentService
}

func NewHistoryHandler(documents *service.DocumentService) *HistoryHandler {
	return &HistoryHandler{documents: documents}
}

// Register sets up journal and document routes.
func (h *HistoryHandler) Register(api fiber.Router) {
	api.Get("/history", h.history)
	api.Get("/documents", h.listDocuments)
	api.Post("/documents", h.createDocument)
	api.Get("/documents/:id/download", h.downloadDocument)
}

func (h *HistoryHandler) history(c fiber.Ctx) error {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		limit = n
	}

	entries, err := h.documents.History(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

func (h *HistoryHandler) listDocuments(c fiber.Ctx) error {
	docs, err := h.documents.ListDocuments(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}

type createDocumentRequest struct {
	Title         string  `json:"title"`
	ProjectName   string  `json:"project_name"`
	ProjectDomain string  `json:"project_domain"`
	Comment       string  `json:"comment"`
	LogIDs        []int64 `json:"log_ids"`
}

func (h *HistoryHandler) createDocument(c fiber.Ctx) error {
	var body createDocumentRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	doc, data, err := h.documents.BuildDocument(c.Context(),
		body.Title, body.ProjectName, body.ProjectDomain, body.Comment, body.LogIDs)
	if err != nil {
		if errors.Is(err, port.ErrNoSectionsSelected) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return sendDocx(c, service.Filename(doc.Title, doc.ID), data)
}

func (h *HistoryHandler) downloadDocument(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid document id"})
	}

	doc, data, err := h.documents.ExportDocument(c.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return sendDocx(c, service.Filename(doc.Title, doc.ID), data)
}

func sendDocx(c fiber.Ctx, filename string, data []byte) error {
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
