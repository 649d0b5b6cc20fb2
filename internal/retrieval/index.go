// Package retrieval implements the lexical retriever: a precomputed TF-IDF
// term-weight index over the reference corpus and cosine-similarity ranking
// of free-text queries against it. Everything here is read-only after load
// and safe for concurrent use.
package retrieval

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer is the fitted term-weighting model: a closed vocabulary mapping
// terms to matrix columns, and one inverse-document-frequency weight per
// column. It is produced by the external corpus pipeline together with the
// corpus JSONL and the matrix, and the three must be regenerated together.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// SparseVector is one row of the term-weight matrix (or a projected query):
// parallel slices of column indices and weights. Rows are L2-normalized at
// build time, so cosine similarity reduces to a dot product.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Index pairs the vectorizer with the per-chunk weight matrix.
type Index struct {
	vectorizer Vectorizer
	rows       []SparseVector
}

// NewIndex validates the vectorizer/matrix pair: every vocabulary column and
// every row index must address an existing IDF weight.
func NewIndex(vectorizer Vectorizer, rows []SparseVector) (*Index, error) {
	dim := len(vectorizer.IDF)
	for term, col := range vectorizer.Vocabulary {
		if col < 0 || col >= dim {
			return nil, fmt.Errorf("vectorizer: term %q maps to column %d outside idf range %d", term, col, dim)
		}
	}
	for i, row := range rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("matrix row %d: %d indices vs %d values", i, len(row.Indices), len(row.Values))
		}
		for _, col := range row.Indices {
			if col < 0 || col >= dim {
				return nil, fmt.Errorf("matrix row %d: column %d outside idf range %d", i, col, dim)
			}
		}
	}
	return &Index{vectorizer: vectorizer, rows: rows}, nil
}

// LoadIndex reads the two serialized index artifacts.
func LoadIndex(vectorizerPath, matrixPath string) (*Index, error) {
	var vectorizer Vectorizer
	if err := readJSONFile(vectorizerPath, &vectorizer); err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}

	var rows []SparseVector
	if err := readJSONFile(matrixPath, &rows); err != nil {
		return nil, fmt.Errorf("load matrix: %w", err)
	}

	return NewIndex(vectorizer, rows)
}

// Rows returns the number of matrix rows; must equal the corpus size.
func (ix *Index) Rows() int {
	return len(ix.rows)
}

// Transform projects free text into the index's vector space: term counts
// weighted by IDF, then L2-normalized. Out-of-vocabulary terms contribute
// nothing — this is a closed-vocabulary lexical match, not a semantic one.
func (ix *Index) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range tokenize(text) {
		if col, ok := ix.vectorizer.Vocabulary[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	cols := make([]int, 0, len(counts))
	for col := range counts {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	vec := SparseVector{Indices: cols, Values: make([]float64, len(cols))}
	var norm float64
	for i, col := range cols {
		w := counts[col] * ix.vectorizer.IDF[col]
		vec.Values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// tokenize lower-cases the text and splits it on non-letter/digit runes
// (Unicode-aware, so Cyrillic survives), dropping tokens shorter than two
// runes. Must mirror the tokenization the artifacts were built with.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) < 2 {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// dot walks two sorted sparse vectors in lock step.
func dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		}
	}
	return sum
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
