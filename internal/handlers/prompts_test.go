package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promptpix/apiserver/internal/services"
	"github.com/promptpix/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromptRouter(repo *stubPromptRepo) *chi.Mux {
	router := chi.NewRouter()
	PromptRouter(router, services.NewPromptService(repo))
	return router
}

func TestSavePrompt(t *testing.T) {
	repo := &stubPromptRepo{}
	router := newPromptRouter(repo)

	rec := postJSON(t, router, "/save-prompt", SavePromptRequest{
		UserID:   7,
		Prompt:   "a red fox",
		ImageURL: "https://img.example/a.png",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SavePromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, repo.records, 1)
	assert.Equal(t, 7, repo.records[0].UserID)
}

func TestSavePromptMissingFields(t *testing.T) {
	router := newPromptRouter(&stubPromptRepo{})

	cases := []SavePromptRequest{
		{Prompt: "a red fox"},
		{UserID: 7},
		{},
	}
	for _, payload := range cases {
		rec := postJSON(t, router, "/save-prompt", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec), "required")
	}
}

func TestSavePromptEmptyImageURLStoredAsNull(t *testing.T) {
	repo := &stubPromptRepo{}
	router := newPromptRouter(repo)

	rec := postJSON(t, router, "/save-prompt", SavePromptRequest{
		UserID: 7,
		Prompt: "a red fox",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.records, 1)
	assert.False(t, repo.records[0].ImageURL.Valid)
}

func TestPromptHistory(t *testing.T) {
	now := time.Now()
	repo := &stubPromptRepo{records: []types.Prompt{
		{ID: 3, UserID: 7, Text: "third", CreatedAt: now},
		{ID: 2, UserID: 7, Text: "second", CreatedAt: now.Add(-time.Hour)},
		{ID: 1, UserID: 7, Text: "first", CreatedAt: now.Add(-2 * time.Hour)},
	}}
	router := newPromptRouter(repo)

	rec := postJSON(t, router, "/prompt-history", HistoryRequest{UserID: 7})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Prompts, 3)
	// Repository order is preserved: newest first.
	assert.Equal(t, []int64{3, 2, 1}, []int64{
		resp.Prompts[0].ID, resp.Prompts[1].ID, resp.Prompts[2].ID,
	})
}

func TestPromptHistoryMissingUserID(t *testing.T) {
	router := newPromptRouter(&stubPromptRepo{})

	rec := postJSON(t, router, "/prompt-history", HistoryRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "required")
}

func TestPromptHistoryEmpty(t *testing.T) {
	router := newPromptRouter(&stubPromptRepo{})

	rec := postJSON(t, router, "/prompt-history", HistoryRequest{UserID: 7})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Prompts)
	assert.Empty(t, resp.Prompts)
}
