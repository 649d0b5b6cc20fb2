// Package store implements relational persistence for the generation journal,
// assembled documents and the audit trail.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS generation_log (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			project_name TEXT NOT NULL,
			project_domain TEXT NOT NULL,
			section_name TEXT NOT NULL,
			mode TEXT NOT NULL,
			generated_text TEXT NOT NULL,
			used_chunks TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			title TEXT NOT NULL,
			project_name TEXT NOT NULL,
			project_domain TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS document_sections (
			id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			log_id BIGINT NOT NULL REFERENCES generation_log(id),
			section_name TEXT NOT NULL,
			order_index INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			details JSONB NOT NULL DEFAULT '{}'::jsonb,
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- Generation log ---

// InsertGenerationLog journals one generated section and fills in the
// database-assigned id and timestamp.
func (s *PostgresStore) InsertGenerationLog(ctx context.Context, entry *domain.GenerationLog) error {
	query := `
		INSERT INTO generation_log (project_name, project_domain, section_name, mode, generated_text, used_chunks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := s.db.QueryRowContext(ctx, query,
		entry.ProjectName, entry.ProjectDomain, entry.SectionName,
		entry.Mode, entry.GeneratedText, pq.Array(entry.UsedChunks),
	)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

// ListGenerationLogs returns the newest journal entries, up to limit.
func (s *PostgresStore) ListGenerationLogs(ctx context.Context, limit int) ([]domain.GenerationLog, error) {
	query := `SELECT id, created_at, project_name, project_domain, section_name, mode, generated_text, used_chunks
	          FROM generation_log ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list generation logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.GenerationLog, 0)
	for rows.Next() {
		var e domain.GenerationLog
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ProjectName, &e.ProjectDomain,
			&e.SectionName, &e.Mode, &e.GeneratedText, pq.Array(&e.UsedChunks)); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetGenerationLogsByIDs fetches the named journal entries. Missing ids are
// simply absent from the result; the caller decides whether that matters.
func (s *PostgresStore) GetGenerationLogsByIDs(ctx context.Context, ids []int64) ([]domain.GenerationLog, error) {
	query := `SELECT id, created_at, project_name, project_domain, section_name, mode, generated_text, used_chunks
	          FROM generation_log WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get generation logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.GenerationLog, 0, len(ids))
	for rows.Next() {
		var e domain.GenerationLog
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ProjectName, &e.ProjectDomain,
			&e.SectionName, &e.Mode, &e.GeneratedText, pq.Array(&e.UsedChunks)); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Documents ---

// CreateDocument stores a document and its section links in one transaction.
func (s *PostgresStore) CreateDocument(ctx context.Context, doc *domain.Document, sections []domain.DocumentSection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO documents (title, project_name, project_domain, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		doc.Title, doc.ProjectName, doc.ProjectDomain, doc.Comment,
	)
	if err := row.Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for i := range sections {
		sections[i].DocumentID = doc.ID
		row := tx.QueryRowContext(ctx, `
			INSERT INTO document_sections (document_id, log_id, section_name, order_index)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			sections[i].DocumentID, sections[i].LogID, sections[i].SectionName, sections[i].OrderIndex,
		)
		if err := row.Scan(&sections[i].ID); err != nil {
			return fmt.Errorf("insert document section: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *PostgresStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	query := `SELECT id, created_at, title, project_name, project_domain, comment
	          FROM documents ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.CreatedAt, &d.Title, &d.ProjectName, &d.ProjectDomain, &d.Comment); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocumentByID retrieves one document.
func (s *PostgresStore) GetDocumentByID(ctx context.Context, id int64) (*domain.Document, error) {
	query := `SELECT id, created_at, title, project_name, project_domain, comment
	          FROM documents WHERE id = $1`

	var d domain.Document
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.CreatedAt, &d.Title, &d.ProjectName, &d.ProjectDomain, &d.Comment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListDocumentSections returns a document's section links in document order.
func (s *PostgresStore) ListDocumentSections(ctx context.Context, documentID int64) ([]domain.DocumentSection, error) {
	query := `SELECT id, document_id, log_id, section_name, order_index
	          FROM document_sections WHERE document_id = $1 ORDER BY order_index`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document sections: %w", err)
	}
	defer rows.Close()

	sections := make([]domain.DocumentSection, 0)
	for rows.Next() {
		var sec domain.DocumentSection
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.LogID, &sec.SectionName, &sec.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan document section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// --- Audit ---

// WriteAudit records one audit trail entry.
func (s *PostgresStore) WriteAudit(action, resource, details, ip, userAgent string) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_logs (action, resource, details, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)`,
		action, resource, details, ip, userAgent,
	)
	if err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}
