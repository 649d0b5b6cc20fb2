package retrieval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
)

// corpusRecord mirrors one corpus line; chunk_index is a pointer so absence
// can be told apart from an explicit zero.
type corpusRecord struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	SourceType string `json:"source_type"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	ChunkIndex *int   `json:"chunk_index"`
	Text       string `json:"text"`
}

// LoadCorpus reads corpus chunks from a line-delimited JSON file. Line order
// is significant: the chunk on line i must correspond to row i of the
// term-weight matrix, so lines are never reordered and blank lines are the
// only thing skipped. Chunks without an explicit chunk_id or chunk_index get
// positional fallbacks.
func LoadCorpus(path string) ([]domain.CorpusChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var chunks []domain.CorpusChunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec corpusRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("decode corpus record %d: %w", len(chunks)+1, err)
		}
		pos := len(chunks)
		chunk := domain.CorpusChunk{
			ChunkID:    rec.ChunkID,
			DocID:      rec.DocID,
			SourceType: rec.SourceType,
			Title:      rec.Title,
			URL:        rec.URL,
			ChunkIndex: pos,
			Text:       rec.Text,
		}
		if rec.ChunkIndex != nil {
			chunk.ChunkIndex = *rec.ChunkIndex
		}
		if chunk.ChunkID == "" {
			chunk.ChunkID = fmt.Sprintf("chunk_%d", pos)
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return chunks, nil
}
