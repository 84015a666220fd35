package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/promptpix/apiserver/internal/imagegen"
	"github.com/promptpix/apiserver/internal/services"
)

// GenerateHandler exposes the generation workflow over HTTP.
type GenerateHandler struct {
	generation *services.GenerationService
}

func NewGenerateHandler(generation *services.GenerationService) *GenerateHandler {
	return &GenerateHandler{generation: generation}
}

// GenerateRouter registers the generation route on the given router.
func GenerateRouter(r chi.Router, generation *services.GenerationService) {
	handler := NewGenerateHandler(generation)
	r.Post("/generate-image", handler.Generate)
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	User   string `json:"user,omitempty"`
	Model  string `json:"model,omitempty"`
}

type GenerateResponse struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	User     string `json:"user,omitempty"`
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.generation.Generate(r.Context(), services.GenerateRequest{
		Prompt:    req.Prompt,
		Model:     req.Model,
		UserEmail: req.User,
	})
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		ImageURL: result.ImageURL,
		Prompt:   result.Prompt,
		User:     result.UserEmail,
	})
}

// writeGenerateError maps workflow errors onto the response taxonomy:
// validation 400, configuration 500, provider errors mirror the
// upstream status.
func writeGenerateError(w http.ResponseWriter, err error) {
	var providerErr *imagegen.ProviderError

	switch {
	case errors.Is(err, services.ErrPromptRequired):
		writeError(w, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, imagegen.ErrUnsupportedModel):
		writeError(w, http.StatusBadRequest, "Model not supported yet.")
	case errors.Is(err, services.ErrUnknownUser):
		writeError(w, http.StatusBadRequest, "unknown user")
	case errors.Is(err, imagegen.ErrMissingAPIKey):
		writeError(w, http.StatusInternalServerError, "API key missing")
	case errors.Is(err, imagegen.ErrNoImage):
		writeError(w, http.StatusBadGateway, "no image in provider response")
	case errors.As(err, &providerErr):
		status := providerErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, providerErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
