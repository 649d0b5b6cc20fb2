package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/port"
	"github.com/karaulvitte2/VitteTZproject/internal/retrieval"
	"github.com/karaulvitte2/VitteTZproject/pkg/config"
)

type fakeLLM struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

func (f *fakeLLM) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.reply, f.err
}

// fitTestIndex builds a small index over the chunks: smooth IDF over the
// texts, rows projected with Transform so they match query weighting exactly.
func fitTestIndex(t *testing.T, chunks []domain.CorpusChunk) *retrieval.Index {
	t.Helper()

	vocab := make(map[string]int)
	docFreq := make(map[string]int)
	for _, chunk := range chunks {
		seen := make(map[string]bool)
		for _, term := range strings.Fields(strings.ToLower(chunk.Text)) {
			if len([]rune(term)) < 2 {
				continue
			}
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
		idf[col] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectorizer := retrieval.Vectorizer{Vocabulary: vocab, IDF: idf}
	probe, err := retrieval.NewIndex(vectorizer, nil)
	require.NoError(t, err)

	rows := make([]retrieval.SparseVector, len(chunks))
	for i, chunk := range chunks {
		rows[i] = probe.Transform(chunk.Text)
	}

	index, err := retrieval.NewIndex(vectorizer, rows)
	require.NoError(t, err)
	return index
}

func testSettings() config.RAGSettings {
	return config.RAGSettings{
		DefaultMode: "rag_gost",
		TopK:        2,
		Modes: map[string]config.ModeConfig{
			"baseline": {UseRetrieval: false},
			"rag_gost": {UseRetrieval: true, AllowedSourceTypes: []string{"gost"}},
			"rag_full": {UseRetrieval: true},
		},
	}
}

func newServiceForTest(t *testing.T, llm *fakeLLM) *SectionService {
	t.Helper()
	chunks := []domain.CorpusChunk{
		{ChunkID: "c1", SourceType: "gost", Title: "ГОСТ 19.201-78",
			Text: "Техническое задание содержит требования к системе"},
		{ChunkID: "c2", SourceType: "guide", Title: "Методичка",
			Text: "Методические указания по оформлению работ"},
		{ChunkID: "c3", SourceType: "gost", Title: "ГОСТ 19.201-78",
			Text: "Требования к системе включают требования к функциям"},
	}
	retriever, err := retrieval.NewRetriever(chunks, fitTestIndex(t, chunks))
	require.NoError(t, err)
	return NewSectionService(testSettings(), retriever, llm)
}

func sampleRequest(mode string) domain.SectionRequest {
	return domain.SectionRequest{
		ProjectName:        "Система учета сотрудников",
		ProjectDomain:      "учет кадров в вузе",
		ProjectDescription: "Разработка информационной системы учета сотрудников вуза",
		SectionName:        "Требования к системе",
		Mode:               mode,
	}
}

func TestGenerateWithRetrieval(t *testing.T) {
	llm := &fakeLLM{reply: "Текст раздела."}
	svc := newServiceForTest(t, llm)

	result, err := svc.Generate(context.Background(), sampleRequest("rag_gost"))
	require.NoError(t, err)

	assert.Equal(t, "Текст раздела.", result.Text)
	assert.ElementsMatch(t, []string{"c1", "c3"}, result.UsedChunks)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.lastUser, "Фрагмент 1")
	assert.Contains(t, llm.lastSystem, "ГОСТ 19.201-78")
}

func TestGenerateBaselineSkipsRetrieval(t *testing.T) {
	llm := &fakeLLM{reply: "Текст без контекста."}
	svc := newServiceForTest(t, llm)

	result, err := svc.Generate(context.Background(), sampleRequest("baseline"))
	require.NoError(t, err)

	assert.Empty(t, result.UsedChunks)
	assert.NotContains(t, llm.lastUser, "Фрагмент")
}

func TestGenerateDefaultsMode(t *testing.T) {
	llm := &fakeLLM{reply: "ок"}
	svc := newServiceForTest(t, llm)

	result, err := svc.Generate(context.Background(), sampleRequest(""))
	require.NoError(t, err)

	// Default mode is rag_gost, so only gost chunks may be used.
	for _, id := range result.UsedChunks {
		assert.NotEqual(t, "c2", id)
	}
	assert.NotEmpty(t, result.UsedChunks)
}

func TestGenerateUnknownMode(t *testing.T) {
	llm := &fakeLLM{reply: "ок"}
	svc := newServiceForTest(t, llm)

	_, err := svc.Generate(context.Background(), sampleRequest("embeddings"))
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrUnknownMode)
	assert.Contains(t, err.Error(), `"embeddings"`)
	assert.Zero(t, llm.calls)
}

func TestGenerateAbsorbsLLMFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	svc := newServiceForTest(t, llm)

	result, err := svc.Generate(context.Background(), sampleRequest("rag_gost"))
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Ошибка при обращении к модели LLM")
	assert.Contains(t, result.Text, "connection refused")
	// Retrieval ran before the failure, so the used chunks are still reported.
	assert.NotEmpty(t, result.UsedChunks)
}

func TestModesAndDefault(t *testing.T) {
	svc := newServiceForTest(t, &fakeLLM{})

	assert.Equal(t, []string{"baseline", "rag_full", "rag_gost"}, svc.Modes())
	assert.Equal(t, "rag_gost", svc.DefaultMode())
}
