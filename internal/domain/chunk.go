package domain

// CorpusChunk is one retrievable passage of reference text. Chunks are loaded
// once at startup from the corpus JSONL file and never mutated afterwards;
// their position in the file ties them to the rows of the term-weight matrix.
type CorpusChunk struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	SourceType string `json:"source_type"` // e.g. "gost", "guide"
	Title      string `json:"title"`
	URL        string `json:"url"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// RetrievedChunk is a corpus chunk ranked against a query. Score is the raw
// cosine similarity, not normalized further.
type RetrievedChunk struct {
	CorpusChunk
	Score float64 `json:"score"`
}
