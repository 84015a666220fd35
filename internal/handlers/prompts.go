package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/promptpix/apiserver/internal/services"
	"github.com/promptpix/apiserver/types"
)

// PromptHandler exposes prompt persistence and history over HTTP.
type PromptHandler struct {
	prompts *services.PromptService
}

func NewPromptHandler(prompts *services.PromptService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

// PromptRouter registers prompt routes on the given router.
func PromptRouter(r chi.Router, prompts *services.PromptService) {
	handler := NewPromptHandler(prompts)
	r.Post("/save-prompt", handler.SavePrompt)
	r.Post("/prompt-history", handler.History)
}

type SavePromptRequest struct {
	UserID   int    `json:"user_id"`
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
}

type SavePromptResponse struct {
	Success bool `json:"success"`
}

type HistoryRequest struct {
	UserID int `json:"user_id"`
}

type HistoryResponse struct {
	Prompts []types.PromptView `json:"prompts"`
}

func (h *PromptHandler) SavePrompt(w http.ResponseWriter, r *http.Request) {
	var req SavePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.UserID < 1 || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "user_id and prompt required")
		return
	}

	if _, err := h.prompts.Save(r.Context(), req.UserID, strings.TrimSpace(req.Prompt), req.ImageURL); err != nil {
		writeError(w, http.StatusBadRequest, "failed to save prompt")
		return
	}

	writeJSON(w, http.StatusOK, SavePromptResponse{Success: true})
}

func (h *PromptHandler) History(w http.ResponseWriter, r *http.Request) {
	var req HistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	prompts, err := h.prompts.History(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to load history")
		return
	}

	views := make([]types.PromptView, 0, len(prompts))
	for _, prompt := range prompts {
		views = append(views, prompt.View())
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Prompts: views})
}
