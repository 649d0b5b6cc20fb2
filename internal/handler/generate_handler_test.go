package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaulvitte2/VitteTZproject/internal/domain"
	"github.com/karaulvitte2/VitteTZproject/internal/retrieval"
	"github.com/karaulvitte2/VitteTZproject/internal/service"
	"github.com/karaulvitte2/VitteTZproject/pkg/config"
)

type stubLLM struct{ reply string }

func (s *stubLLM) ModelName() string { return "stub" }

func (s *stubLLM) Complete(context.Context, string, string) (string, error) {
	return s.reply, nil
}

type stubGenerationStore struct {
	entries []domain.GenerationLog
	err     error
}

func (s *stubGenerationStore) InsertGenerationLog(_ context.Context, entry *domain.GenerationLog) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func newTestApp(t *testing.T, store GenerationStore) *fiber.App {
	t.Helper()

	settings := config.RAGSettings{
		DefaultMode: "baseline",
		TopK:        3,
		Modes: map[string]config.ModeConfig{
			"baseline": {UseRetrieval: false},
		},
	}
	// Empty corpus: baseline mode never touches the retriever.
	index, err := retrieval.NewIndex(retrieval.Vectorizer{Vocabulary: map[string]int{}, IDF: nil}, nil)
	require.NoError(t, err)
	retriever, err := retrieval.NewRetriever(nil, index)
	require.NoError(t, err)

	sections := service.NewSectionService(settings, retriever, &stubLLM{reply: "Текст раздела."})

	app := fiber.New()
	api := app.Group("/api/v1")
	NewGenerateHandler(sections, store).Register(api)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGenerateEndpoint(t *testing.T) {
	store := &stubGenerationStore{}
	app := newTestApp(t, store)

	resp := postJSON(t, app, "/api/v1/generate",
		`{"project_name":"СУС","project_domain":"кадры","project_description":"учет сотрудников","section_name":"Назначение системы"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Text       string   `json:"text"`
		UsedChunks []string `json:"used_chunks"`
		LogID      int64    `json:"log_id"`
		Mode       string   `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Текст раздела.", body.Text)
	assert.Empty(t, body.UsedChunks)
	assert.Equal(t, int64(1), body.LogID)
	assert.Equal(t, "baseline", body.Mode)

	require.Len(t, store.entries, 1)
	assert.Equal(t, "Назначение системы", store.entries[0].SectionName)
	assert.Equal(t, "baseline", store.entries[0].Mode)
}

func TestGenerateEndpointUnknownMode(t *testing.T) {
	store := &stubGenerationStore{}
	app := newTestApp(t, store)

	resp := postJSON(t, app, "/api/v1/generate",
		`{"project_name":"СУС","section_name":"Назначение системы","mode":"embeddings"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.entries)
}

func TestGenerateEndpointRequiresSectionName(t *testing.T) {
	app := newTestApp(t, &stubGenerationStore{})

	resp := postJSON(t, app, "/api/v1/generate", `{"project_name":"СУС"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpointSampleProjectSubstitution(t *testing.T) {
	store := &stubGenerationStore{}
	app := newTestApp(t, store)

	resp := postJSON(t, app, "/api/v1/generate",
		`{"project_id":"hr_muiv","section_name":"Назначение системы"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, store.entries, 1)
	assert.Equal(t, "Система учета сотрудников", store.entries[0].ProjectName)
	assert.Equal(t, "учет кадров в вузе", store.entries[0].ProjectDomain)
}

func TestGenerateEndpointStoreFailureIsBestEffort(t *testing.T) {
	store := &stubGenerationStore{err: errors.New("db down")}
	app := newTestApp(t, store)

	resp := postJSON(t, app, "/api/v1/generate",
		`{"project_name":"СУС","section_name":"Назначение системы"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Text  string `json:"text"`
		LogID int64  `json:"log_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Текст раздела.", body.Text)
	assert.Zero(t, body.LogID)
}

func TestMetaEndpoint(t *testing.T) {
	app := newTestApp(t, &stubGenerationStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meta", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Projects    []domain.SampleProject `json:"projects"`
		Sections    []string               `json:"sections"`
		Modes       []string               `json:"modes"`
		DefaultMode string                 `json:"default_mode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Projects, 3)
	assert.Equal(t, domain.SectionNames, body.Sections)
	assert.Equal(t, "baseline", body.DefaultMode)
}
