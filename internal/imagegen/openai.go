package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// openaiProvider talks to the OpenAI Images endpoint.
type openaiProvider struct {
	apiKey   string
	endpoint string
}

func newOpenAIProvider(apiKey, endpoint string) *openaiProvider {
	return &openaiProvider{apiKey: apiKey, endpoint: endpoint}
}

func (p *openaiProvider) configured() bool {
	return p.apiKey != "" && p.endpoint != ""
}

// openaiResponse is the Images API shape: a data array of URL entries.
type openaiResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (r openaiResponse) resolve() string {
	if len(r.Data) > 0 {
		return r.Data[0].URL
	}
	return ""
}

func (p *openaiProvider) generate(ctx context.Context, httpClient *http.Client, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"prompt": prompt,
		"n":      1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Status: http.StatusBadGateway, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ProviderError{Provider: "openai", Status: http.StatusBadGateway, Message: "failed to read provider response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Message:  providerErrorMessage(body, "openai error"),
		}
	}

	var decoded openaiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &ProviderError{Provider: "openai", Status: http.StatusBadGateway, Message: "invalid provider response"}
	}

	imageURL := decoded.resolve()
	if imageURL == "" {
		return "", ErrNoImage
	}
	return imageURL, nil
}

// providerErrorMessage digs a human-readable message out of an arbitrary
// provider error payload. Providers disagree on where they put it.
func providerErrorMessage(body []byte, fallback string) string {
	for _, path := range []string{"error.message", "error", "detail", "message"} {
		if value := gjson.GetBytes(body, path); value.Type == gjson.String && value.Str != "" {
			return value.Str
		}
	}
	return fallback
}
