package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/promptpix/apiserver/config"
)

const (
	// DefaultModel is used when a request does not name a provider.
	DefaultModel = "fal-ai"

	defaultRequestTimeout = 60 * time.Second
	maxResponseBytes      = 1 << 20
)

// ErrUnsupportedModel is returned for a provider selector with no
// registered provider. No outbound call is made in that case.
var ErrUnsupportedModel = errors.New("model not supported yet")

// ErrMissingAPIKey is returned when the selected provider has no API key
// configured. This is a server configuration fault, not a caller error.
var ErrMissingAPIKey = errors.New("provider api key missing")

// ErrNoImage is returned when a provider responds with success but none
// of its recognized image fields resolve to a URL.
var ErrNoImage = errors.New("no image in provider response")

// ProviderError carries an upstream provider failure with enough detail
// for the caller to mirror the upstream status.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
}

// provider issues one generation request and returns a canonical image URL.
type provider interface {
	generate(ctx context.Context, httpClient *http.Client, prompt string) (string, error)
	configured() bool
}

// Client dispatches generation requests to a named provider and
// normalizes the differently shaped responses into a single image URL.
type Client struct {
	httpClient *http.Client
	providers  map[string]provider
}

// NewClient constructs a Client with all known providers registered.
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		providers: map[string]provider{
			"fal-ai": newFalProvider(cfg.FalAPIKey, cfg.FalEndpoint),
			"openai": newOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEndpoint),
		},
	}
}

// Generate issues exactly one request to the selected provider and
// returns the canonical image URL. It performs no persistence.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = DefaultModel
	}

	p, ok := c.providers[model]
	if !ok {
		return "", ErrUnsupportedModel
	}
	if !p.configured() {
		return "", ErrMissingAPIKey
	}

	return p.generate(ctx, c.httpClient, prompt)
}
