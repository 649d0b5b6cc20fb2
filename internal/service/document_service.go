package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/karaulvitte2/VitteTZproject/internal/adapter/docx"
	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/port"
)

// tailOrder places sections with unrecognized names after all known ones.
const tailOrder = 99

// sectionOrder fixes where each known section sits in the assembled document
// and how its heading is numbered. Keys are normalized (trimmed, lower-case);
// look up through sectionRank/sectionTitle, never directly.
var sectionOrder = map[string]struct {
	order int
	title string
}{
	"основания для разработки": {1, "1. Основания для разработки"},
	"назначение системы":       {2, "2. Назначение системы"},
	"требования к системе":     {3, "3. Требования к системе"},
}

const defaultDocumentTitle = "Техническое задание"

// HistoryStore is the persistence surface the document service needs.
type HistoryStore interface {
	GetGenerationLogsByIDs(ctx context.Context, ids []int64) ([]domain.GenerationLog, error)
	CreateDocument(ctx context.Context, doc *domain.Document, sections []domain.DocumentSection) error
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	GetDocumentByID(ctx context.Context, id int64) (*domain.Document, error)
	ListDocumentSections(ctx context.Context, documentID int64) ([]domain.DocumentSection, error)
	ListGenerationLogs(ctx context.Context, limit int) ([]domain.GenerationLog, error)
}

// DocumentService assembles journal entries into stored documents and renders
// them as Word files.
type DocumentService struct {
	store  HistoryStore
	render func(docx.Meta, []docx.Section) ([]byte, error)
}

func NewDocumentService(store HistoryStore) *DocumentService {
	return &DocumentService{store: store, render: docx.Build}
}

// History returns the newest journal entries, up to limit.
func (s *DocumentService) History(ctx context.Context, limit int) ([]domain.GenerationLog, error) {
	return s.store.ListGenerationLogs(ctx, limit)
}

// ListDocuments returns all stored documents, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// BuildDocument assembles the named journal entries into a new document,
// stores it, and returns its metadata with the rendered Word file. Sections
// are placed in the canonical order regardless of the order of logIDs; when a
// section name is not one of the known ones, it goes to the tail under its own
// name. Empty title, project fields and comment fall back to defaults taken
// from the first resolved entry.
func (s *DocumentService) BuildDocument(ctx context.Context, title, projectName, projectDomain, comment string, logIDs []int64) (*domain.Document, []byte, error) {
	if len(logIDs) == 0 {
		return nil, nil, port.ErrNoSectionsSelected
	}

	entries, err := s.store.GetGenerationLogsByIDs(ctx, logIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, port.ErrNoSectionsSelected
	}

	if title == "" {
		title = defaultDocumentTitle
	}
	if projectName == "" {
		projectName = entries[0].ProjectName
	}
	if projectDomain == "" {
		projectDomain = entries[0].ProjectDomain
	}

	ordered := orderSections(entries)

	doc := &domain.Document{
		Title:         title,
		ProjectName:   projectName,
		ProjectDomain: projectDomain,
		Comment:       comment,
	}
	links := make([]domain.DocumentSection, 0, len(ordered))
	docxSections := make([]docx.Section, 0, len(ordered))
	for i, entry := range ordered {
		links = append(links, domain.DocumentSection{
			LogID:       entry.ID,
			SectionName: entry.SectionName,
			OrderIndex:  i,
		})
		docxSections = append(docxSections, docx.Section{
			Title: sectionTitle(entry.SectionName),
			Text:  entry.GeneratedText,
		})
	}

	if err := s.store.CreateDocument(ctx, doc, links); err != nil {
		return nil, nil, err
	}

	data, err := s.render(docx.Meta{
		Title:         doc.Title,
		ProjectName:   doc.ProjectName,
		ProjectDomain: doc.ProjectDomain,
		Comment:       doc.Comment,
	}, docxSections)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// ExportDocument re-renders a stored document as a Word file.
func (s *DocumentService) ExportDocument(ctx context.Context, id int64) (*domain.Document, []byte, error) {
	doc, err := s.store.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	links, err := s.store.ListDocumentSections(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	logIDs := make([]int64, 0, len(links))
	for _, link := range links {
		logIDs = append(logIDs, link.LogID)
	}
	entries, err := s.store.GetGenerationLogsByIDs(ctx, logIDs)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]domain.GenerationLog, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	docxSections := make([]docx.Section, 0, len(links))
	for _, link := range links {
		entry, ok := byID[link.LogID]
		if !ok {
			continue
		}
		docxSections = append(docxSections, docx.Section{
			Title: sectionTitle(link.SectionName),
			Text:  entry.GeneratedText,
		})
	}

	data, err := s.render(docx.Meta{
		Title:         doc.Title,
		ProjectName:   doc.ProjectName,
		ProjectDomain: doc.ProjectDomain,
		Comment:       doc.Comment,
	}, docxSections)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// Filename derives a safe download filename from the document title and id.
func Filename(title string, id int64) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	if cleaned == "" {
		cleaned = "document"
	}
	return fmt.Sprintf("%s_%d.docx", cleaned, id)
}

// orderSections sorts journal entries into canonical document order; entries
// sharing a rank (notably the tail of unknown names) are ordered by title.
func orderSections(entries []domain.GenerationLog) []domain.GenerationLog {
	ordered := make([]domain.GenerationLog, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(a, b int) bool {
		ra, rb := sectionRank(ordered[a].SectionName), sectionRank(ordered[b].SectionName)
		if ra != rb {
			return ra < rb
		}
		return sectionTitle(ordered[a].SectionName) < sectionTitle(ordered[b].SectionName)
	})
	return ordered
}

// normalizeSectionName makes the lookup tolerant of case and stray whitespace
// in journaled section names.
func normalizeSectionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sectionRank(name string) int {
	if s, ok := sectionOrder[normalizeSectionName(name)]; ok {
		return s.order
	}
	return tailOrder
}

func sectionTitle(name string) string {
	if s, ok := sectionOrder[normalizeSectionName(name)]; ok {
		return s.title
	}
	return name
}
