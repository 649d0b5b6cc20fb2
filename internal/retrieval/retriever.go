package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
)

// sentinelScore sits below any attainable cosine similarity of non-negative
// TF-IDF vectors, so chunks excluded by the source-type filter can never
// outrank an eligible chunk. Index positions stay stable for id lookup.
const sentinelScore = -1.0

// Retriever ranks corpus chunks against free-text queries using the
// precomputed term-weight index.
type Retriever struct {
	chunks []domain.CorpusChunk
	index  *Index
}

// NewRetriever pairs a corpus with its term-weight index. The two artifacts
// must have been produced together: chunk i corresponds to matrix row i, and
// a length mismatch would silently attribute scores to the wrong text, so it
// is rejected here instead of surfacing as garbage rankings later.
func NewRetriever(chunks []domain.CorpusChunk, index *Index) (*Retriever, error) {
	if len(chunks) != index.Rows() {
		return nil, fmt.Errorf("corpus/index mismatch: %d chunks vs %d matrix rows", len(chunks), index.Rows())
	}
	return &Retriever{chunks: chunks, index: index}, nil
}

// Size returns the number of chunks in the corpus.
func (r *Retriever) Size() int {
	return len(r.chunks)
}

// Retrieve returns up to topK chunks ranked by descending cosine similarity
// to the query. An empty or whitespace-only query yields no results. When
// allowedSourceTypes is non-nil, chunks of other source types are never
// returned regardless of their similarity. topK is clamped to
// [1, corpus size]. Ties keep corpus order.
func (r *Retriever) Retrieve(query string, topK int, allowedSourceTypes []string) []domain.RetrievedChunk {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	queryVec := r.index.Transform(query)

	scores := make([]float64, len(r.chunks))
	for i := range r.chunks {
		scores[i] = dot(queryVec, r.index.rows[i])
	}

	if allowedSourceTypes != nil {
		allowed := make(map[string]struct{}, len(allowedSourceTypes))
		for _, st := range allowedSourceTypes {
			allowed[st] = struct{}{}
		}
		for i := range r.chunks {
			if _, ok := allowed[r.chunks[i].SourceType]; !ok {
				scores[i] = sentinelScore
			}
		}
	}

	if topK < 1 {
		topK = 1
	}
	if topK > len(r.chunks) {
		topK = len(r.chunks)
	}

	order := make([]int, len(r.chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]domain.RetrievedChunk, 0, topK)
	for _, idx := range order {
		if len(results) == topK || scores[idx] <= sentinelScore {
			break
		}
		results = append(results, domain.RetrievedChunk{
			CorpusChunk: r.chunks[idx],
			Score:       scores[idx],
		})
	}
	return results
}
