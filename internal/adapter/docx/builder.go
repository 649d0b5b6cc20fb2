// Package docx renders assembled requirements documents as Word files.
package docx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
	"github.com/unidoc/unioffice/v2/measurement"
	"github.com/unidoc/unioffice/v2/schema/soo/wml"
)

// Section is one titled block of body text.
type Section struct {
	Title string
	Text  string
}

// Meta holds the title-page fields.
type Meta struct {
	Title         string
	ProjectName   string
	ProjectDomain string
	Comment       string
}

const emptySectionPlaceholder = "(раздел не заполнен)"

// Build renders a document with a title page followed by one Heading1 block
// per section. Section text is split into paragraphs on blank lines.
func Build(meta Meta, sections []Section) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	writeTitlePage(doc, meta)

	for _, section := range sections {
		heading := doc.AddParagraph()
		heading.SetStyle("Heading1")
		heading.AddRun().AddText(section.Title)

		text := strings.TrimSpace(section.Text)
		if text == "" {
			p := doc.AddParagraph()
			run := p.AddRun()
			run.Properties().SetItalic(true)
			run.AddText(emptySectionPlaceholder)
			continue
		}
		for _, paragraph := range SplitParagraphs(text) {
			doc.AddParagraph().AddRun().AddText(paragraph)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitlePage(doc *document.Document, meta Meta) {
	title := doc.AddParagraph()
	title.Properties().SetAlignment(wml.ST_JcCenter)
	run := title.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetSize(16 * measurement.Point)
	run.AddText(meta.Title)

	project := doc.AddParagraph()
	project.Properties().SetAlignment(wml.ST_JcCenter)
	run = project.AddRun()
	run.Properties().SetSize(12 * measurement.Point)
	run.AddText(fmt.Sprintf("Проект: %s", meta.ProjectName))

	area := doc.AddParagraph()
	area.Properties().SetAlignment(wml.ST_JcCenter)
	run = area.AddRun()
	run.Properties().SetSize(12 * measurement.Point)
	run.AddText(fmt.Sprintf("Предметная область: %s", meta.ProjectDomain))

	if meta.Comment != "" {
		comment := doc.AddParagraph()
		comment.Properties().SetAlignment(wml.ST_JcCenter)
		run = comment.AddRun()
		run.Properties().SetItalic(true)
		run.AddText(meta.Comment)
	}

	doc.AddParagraph().AddRun().AddPageBreak()
}

// SplitParagraphs normalizes line endings and splits text on blank lines,
// dropping empty pieces.
func SplitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		paragraphs = append(paragraphs, part)
	}
	return paragraphs
}
