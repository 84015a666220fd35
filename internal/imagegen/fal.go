package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// falProvider talks to the fal.ai inference endpoint.
type falProvider struct {
	apiKey   string
	endpoint string
}

func newFalProvider(apiKey, endpoint string) *falProvider {
	return &falProvider{apiKey: apiKey, endpoint: endpoint}
}

func (p *falProvider) configured() bool {
	return p.apiKey != "" && p.endpoint != ""
}

// falResponse covers the response shapes fal.ai has been observed to
// return depending on model and queue mode.
type falResponse struct {
	ImageURL string `json:"image_url"`
	Images   []struct {
		URL string `json:"url"`
	} `json:"images"`
	Result struct {
		ImageURL string `json:"image_url"`
	} `json:"result"`
}

// resolve picks the first recognized image field, in the order the
// original client checked them.
func (r falResponse) resolve() string {
	if r.ImageURL != "" {
		return r.ImageURL
	}
	if len(r.Images) > 0 && r.Images[0].URL != "" {
		return r.Images[0].URL
	}
	return r.Result.ImageURL
}

func (p *falProvider) generate(ctx context.Context, httpClient *http.Client, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+p.apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "fal-ai", Status: http.StatusBadGateway, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ProviderError{Provider: "fal-ai", Status: http.StatusBadGateway, Message: "failed to read provider response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{
			Provider: "fal-ai",
			Status:   resp.StatusCode,
			Message:  providerErrorMessage(body, "fal.ai error"),
		}
	}

	var decoded falResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &ProviderError{Provider: "fal-ai", Status: http.StatusBadGateway, Message: "invalid provider response"}
	}

	imageURL := decoded.resolve()
	if imageURL == "" {
		return "", ErrNoImage
	}
	return imageURL, nil
}
