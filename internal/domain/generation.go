package domain

import "time"

// SectionRequest describes one section-generation call.
type SectionRequest struct {
	ProjectName        string `json:"project_name"`
	ProjectDomain      string `json:"project_domain"`
	ProjectDescription string `json:"project_description"`
	SectionName        string `json:"section_name"`
	Mode               string `json:"mode"` // empty = configured default
}

// SectionResult is what the generation pipeline returns: the section text and
// the ordered ids of the corpus chunks that were embedded as context (empty
// when retrieval was skipped or found nothing).
type SectionResult struct {
	Text       string   `json:"text"`
	UsedChunks []string `json:"used_chunks"`
}

// GenerationLog is one journal entry: a single generated section with the
// inputs that produced it.
type GenerationLog struct {
	ID            int64     `json:"id"             db:"id"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	ProjectName   string    `json:"project_name"   db:"project_name"`
	ProjectDomain string    `json:"project_domain" db:"project_domain"`
	SectionName   string    `json:"section_name"   db:"section_name"`
	Mode          string    `json:"mode"           db:"mode"`
	GeneratedText string    `json:"generated_text" db:"generated_text"`
	UsedChunks    []string  `json:"used_chunks"    db:"used_chunks"`
}

// Document is the metadata of one assembled requirements document.
type Document struct {
	ID            int64     `json:"id"             db:"id"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	Title         string    `json:"title"          db:"title"`
	ProjectName   string    `json:"project_name"   db:"project_name"`
	ProjectDomain string    `json:"project_domain" db:"project_domain"`
	Comment       string    `json:"comment"        db:"comment"`
}

// DocumentSection links a document to one generation log entry and fixes the
// section's position inside the document.
type DocumentSection struct {
	ID          int64  `json:"id"           db:"id"`
	DocumentID  int64  `json:"document_id"  db:"document_id"`
	LogID       int64  `json:"log_id"       db:"log_id"`
	SectionName string `json:"section_name" db:"section_name"`
	OrderIndex  int    `json:"order_index"  db:"order_index"`
}
