package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/port"
	"github.com/karaulvitte2/VitteTZproject/internal/retrieval"
	"github.com/karaulvitte2/VitteTZproject/pkg/config"
)

// SectionService runs the generation pipeline for a single requirements
// section: resolve the mode, retrieve supporting corpus chunks if the mode
// asks for them, build the prompts and call the language model.
type SectionService struct {
	settings  config.RAGSettings
	retriever *retrieval.Retriever
	llm       port.LLMProvider
}

func NewSectionService(settings config.RAGSettings, retriever *retrieval.Retriever, llm port.LLMProvider) *SectionService {
	return &SectionService{settings: settings, retriever: retriever, llm: llm}
}

// Modes returns the configured mode names, sorted.
func (s *SectionService) Modes() []string {
	return s.settings.ModeNames()
}

// DefaultMode returns the mode used when a request names none.
func (s *SectionService) DefaultMode() string {
	return s.settings.DefaultMode
}

// Generate drafts one section. A model failure does not fail the call: the
// surrogate text describing the failure becomes the section body, so the
// journal keeps a record of the attempt either way. The only error returned
// is an unknown mode name.
func (s *SectionService) Generate(ctx context.Context, req domain.SectionRequest) (domain.SectionResult, error) {
	mode, err := s.resolveMode(req.Mode)
	if err != nil {
		return domain.SectionResult{}, err
	}

	var retrieved []domain.RetrievedChunk
	if mode.UseRetrieval {
		query := buildRetrievalQuery(req)
		retrieved = s.retriever.Retrieve(query, s.settings.TopK, mode.AllowedSourceTypes)
	}

	systemPrompt := SystemPrompt()
	userPrompt := UserPrompt(req.ProjectName, req.ProjectDomain, req.ProjectDescription,
		req.SectionName, retrieved, mode.UseRetrieval)

	text, err := s.llm.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		slog.Error("llm completion failed", "section", req.SectionName, "model", s.llm.ModelName(), "error", err)
		text = fmt.Sprintf("Ошибка при обращении к модели LLM. Текст ошибки: %v", err)
	}

	usedChunks := make([]string, 0, len(retrieved))
	for _, chunk := range retrieved {
		usedChunks = append(usedChunks, chunk.ChunkID)
	}

	return domain.SectionResult{Text: text, UsedChunks: usedChunks}, nil
}

func (s *SectionService) resolveMode(name string) (config.ModeConfig, error) {
	if name == "" {
		name = s.settings.DefaultMode
	}
	mode, ok := s.settings.Modes[name]
	if !ok {
		return config.ModeConfig{}, fmt.Errorf("%w: %q", port.ErrUnknownMode, name)
	}
	return mode, nil
}

// buildRetrievalQuery assembles the retrieval query from the request fields.
// The trailing sentence anchors the query in the document-drafting domain so
// corpus chunks about requirements documents rank above incidental matches.
func buildRetrievalQuery(req domain.SectionRequest) string {
	return fmt.Sprintf("Проект: %s\nПредметная область: %s\n\nОписание проекта:\n%s\n\nНужно сформировать раздел ТЗ: %s.\nТехническое задание на разработку информационной системы в вузе.",
		req.ProjectName, req.ProjectDomain, req.ProjectDescription, req.SectionName)
}
