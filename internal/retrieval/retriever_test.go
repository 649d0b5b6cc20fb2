package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
)

// fitIndex builds an index over the given chunks the way the offline pipeline
// does: smooth IDF over the chunk texts, rows projected with Transform so they
// share the exact same weighting as queries.
func fitIndex(t *testing.T, chunks []domain.CorpusChunk) *Index {
	t.Helper()

	vocab := make(map[string]int)
	docFreq := make(map[string]int)
	for _, chunk := range chunks {
		seen := make(map[string]bool)
		for _, term := range tokenize(chunk.Text) {
			if _, ok := vocab[term]; !ok {
				vocab[term] = len(vocab)
			}
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}

	idf := make([]float64, len(vocab))
	n := float64(len(chunks))
	for term, col := range vocab {
		df := float64(docFreq[term])
		idf[col] = logSmooth(n, df)
	}

	vectorizer := Vectorizer{Vocabulary: vocab, IDF: idf}
	probe := &Index{vectorizer: vectorizer}
	rows := make([]SparseVector, len(chunks))
	for i, chunk := range chunks {
		rows[i] = probe.Transform(chunk.Text)
	}

	index, err := NewIndex(vectorizer, rows)
	require.NoError(t, err)
	return index
}

// logSmooth is the smoothed inverse document frequency: ln((1+n)/(1+df)) + 1.
func logSmooth(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

func testCorpus() []domain.CorpusChunk {
	return []domain.CorpusChunk{
		{ChunkID: "c1", DocID: "gost-19-201", SourceType: "gost", Title: "ГОСТ 19.201-78",
			Text: "Техническое задание содержит требования к системе и основания для разработки"},
		{ChunkID: "c2", DocID: "guide-01", SourceType: "guide", Title: "Методические указания",
			Text: "Методические указания по оформлению выпускных квалификационных работ студентов"},
		{ChunkID: "c3", DocID: "gost-19-201", SourceType: "gost", Title: "ГОСТ 19.201-78",
			Text: "Требования к системе включают требования к функциям и требования к надежности"},
		{ChunkID: "c4", DocID: "sample-01", SourceType: "sample", Title: "Пример ТЗ",
			Text: "Назначение системы состоит в автоматизации учета сотрудников вуза"},
		{ChunkID: "c5", DocID: "guide-02", SourceType: "guide", Title: "Регламент кафедры",
			Text: "Регламент электронного документооборота кафедры университета"},
	}
}

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	chunks := testCorpus()
	retriever, err := NewRetriever(chunks, fitIndex(t, chunks))
	require.NoError(t, err)
	return retriever
}

func TestNewRetrieverRejectsMismatch(t *testing.T) {
	chunks := testCorpus()
	index := fitIndex(t, chunks)

	_, err := NewRetriever(chunks[:3], index)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus/index mismatch")
}

func TestRetrieveRanksByRelevance(t *testing.T) {
	retriever := newTestRetriever(t)

	results := retriever.Retrieve("требования к системе", 2, nil)
	require.Len(t, results, 2)

	// c3 repeats the query terms most, c1 mentions them once.
	assert.Equal(t, "c3", results[0].ChunkID)
	assert.Equal(t, "c1", results[1].ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetrieveScoresDescend(t *testing.T) {
	retriever := newTestRetriever(t)

	results := retriever.Retrieve("требования к системе и документооборот кафедры", 5, nil)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRetrieveSourceTypeFilter(t *testing.T) {
	retriever := newTestRetriever(t)

	results := retriever.Retrieve("требования к системе", 5, []string{"gost"})
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "gost", r.SourceType)
	}
}

func TestRetrieveFilterNeverBackfills(t *testing.T) {
	retriever := newTestRetriever(t)

	// Only two gost chunks exist; asking for five must not pull in filtered
	// chunks to pad the result.
	results := retriever.Retrieve("требования к системе", 5, []string{"gost"})
	assert.LessOrEqual(t, len(results), 2)
}

func TestRetrieveEmptyFilterListExcludesEverything(t *testing.T) {
	retriever := newTestRetriever(t)

	// Non-nil but empty: nothing is allowed.
	results := retriever.Retrieve("требования к системе", 3, []string{})
	assert.Empty(t, results)
}

func TestRetrieveTopKClamping(t *testing.T) {
	retriever := newTestRetriever(t)

	results := retriever.Retrieve("система", 1000, nil)
	assert.LessOrEqual(t, len(results), retriever.Size())

	results = retriever.Retrieve("требования к системе", 0, nil)
	assert.Len(t, results, 1)

	results = retriever.Retrieve("требования к системе", -5, nil)
	assert.Len(t, results, 1)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	retriever := newTestRetriever(t)

	assert.Empty(t, retriever.Retrieve("", 3, nil))
	assert.Empty(t, retriever.Retrieve("   \n\t ", 3, nil))
}

func TestRetrieveOutOfVocabularyQuery(t *testing.T) {
	retriever := newTestRetriever(t)

	// No query term appears in the corpus: every score is zero, and zero-score
	// chunks are still eligible, so corpus order decides.
	results := retriever.Retrieve("blockchain quantum", 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "c2", results[1].ChunkID)
}
