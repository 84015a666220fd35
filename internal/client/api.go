package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptpix/apiserver/types"
)

const defaultAPITimeout = 120 * time.Second

// API is a thin typed client over the promptpix HTTP surface.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultAPITimeout},
	}
}

// AuthResult is the server response to login and register.
type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// GenerateResult is the server response to generate-image.
type GenerateResult struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	User     string `json:"user"`
}

func (a *API) Register(ctx context.Context, email, password, name string) (AuthResult, error) {
	var result AuthResult
	err := a.post(ctx, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &result)
	return result, err
}

func (a *API) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var result AuthResult
	err := a.post(ctx, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	return result, err
}

func (a *API) Generate(ctx context.Context, prompt, model, userEmail string) (GenerateResult, error) {
	var result GenerateResult
	err := a.post(ctx, "/api/generate-image", "", map[string]string{
		"prompt": prompt,
		"model":  model,
		"user":   userEmail,
	}, &result)
	return result, err
}

func (a *API) History(ctx context.Context, userID int) ([]types.PromptView, error) {
	var result struct {
		Prompts []types.PromptView `json:"prompts"`
	}
	err := a.post(ctx, "/api/prompt-history", "", map[string]int{
		"user_id": userID,
	}, &result)
	return result.Prompts, err
}

// Me resolves the authenticated user behind a bearer token.
func (a *API) Me(ctx context.Context, token string) (types.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/me", nil)
	if err != nil {
		return types.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user types.User
	if err := a.do(req, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (a *API) post(ctx context.Context, route, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return a.do(req, out)
}

func (a *API) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var serverErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &serverErr) == nil && serverErr.Error != "" {
			return errors.New(serverErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
