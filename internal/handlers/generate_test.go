package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/promptpix/apiserver/internal/imagegen"
	"github.com/promptpix/apiserver/internal/services"
	"github.com/promptpix/apiserver/internal/store"
	"github.com/promptpix/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	url   string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubUserRepo struct {
	users map[string]types.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := s.users[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, exists := s.users[user.Email]; exists {
		return types.User{}, store.ErrDuplicateEmail
	}
	user.ID = len(s.users) + 1
	s.users[user.Email] = user
	return user, nil
}

type stubPromptRepo struct {
	records []types.Prompt
}

func (s *stubPromptRepo) Create(ctx context.Context, prompt types.Prompt) (types.Prompt, error) {
	prompt.ID = int64(len(s.records) + 1)
	s.records = append(s.records, prompt)
	return prompt, nil
}

func (s *stubPromptRepo) ListByUser(ctx context.Context, userID int) ([]types.Prompt, error) {
	return s.records, nil
}

func newGenerateRouter(generator *stubGenerator) (*chi.Mux, *stubPromptRepo) {
	users := &stubUserRepo{users: map[string]types.User{
		"a@b.com": {ID: 1, Email: "a@b.com", Name: "Ada"},
	}}
	prompts := &stubPromptRepo{}
	svc := services.NewGenerationService(generator, users, prompts, nil, nil, zerolog.Nop())

	router := chi.NewRouter()
	GenerateRouter(router, svc)
	return router, prompts
}

func postJSON(t *testing.T, router http.Handler, route string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, route, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestGenerateSuccess(t *testing.T) {
	generator := &stubGenerator{url: "https://img.example/fox.png"}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{
		Prompt: "a red fox",
		Model:  "fal-ai",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ImageURL)
	assert.Equal(t, "a red fox", resp.Prompt)
}

func TestGenerateAuthenticatedPersists(t *testing.T) {
	generator := &stubGenerator{url: "https://img.example/fox.png"}
	router, prompts := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{
		Prompt: "a red fox",
		User:   "a@b.com",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, prompts.records, 1)
	assert.Equal(t, "a red fox", prompts.records[0].Text)
	assert.Equal(t, "https://img.example/fox.png", prompts.records[0].ImageURL.String)
}

func TestGenerateMissingPrompt(t *testing.T) {
	generator := &stubGenerator{url: "https://img.example/fox.png"}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{Model: "fal-ai"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "required")
	assert.Zero(t, generator.calls)
}

func TestGenerateUnsupportedModel(t *testing.T) {
	generator := &stubGenerator{err: imagegen.ErrUnsupportedModel}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{
		Prompt: "a red fox",
		Model:  "unsupported-provider",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Model not supported yet.", decodeError(t, rec))
}

func TestGenerateMissingKeyIsConfigurationError(t *testing.T) {
	generator := &stubGenerator{err: imagegen.ErrMissingAPIKey}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{Prompt: "a red fox"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API key missing", decodeError(t, rec))
}

func TestGenerateProviderErrorMirrorsStatus(t *testing.T) {
	generator := &stubGenerator{err: &imagegen.ProviderError{
		Provider: "fal-ai",
		Status:   http.StatusTooManyRequests,
		Message:  "rate limited",
	}}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{Prompt: "a red fox"})

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limited", decodeError(t, rec))
}

func TestGenerateNoImageIsBadGateway(t *testing.T) {
	generator := &stubGenerator{err: imagegen.ErrNoImage}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{Prompt: "a red fox"})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestGenerateUnknownUser(t *testing.T) {
	generator := &stubGenerator{url: "https://img.example/fox.png"}
	router, _ := newGenerateRouter(generator)

	rec := postJSON(t, router, "/generate-image", GenerateRequest{
		Prompt: "a red fox",
		User:   "nobody@example.com",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown user", decodeError(t, rec))
}
