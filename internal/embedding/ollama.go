package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultOllamaURL is the default Ollama API endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is the default embedding model.
	DefaultModel = "all-minilm:l6-v2"

	// DefaultDimensions is the expected output dimensions for all-minilm.
	DefaultDimensions = 384

	// DefaultTimeout is the timeout for embedding requests.
	DefaultTimeout = 30 * time.Second

	// defaultRequestsPerSecond bounds the embed call rate so a large batch
	// ingest does not saturate a shared Ollama instance.
	defaultRequestsPerSecond = 10

	apiPathTags       = "/api/tags"
	apiPathEmbeddings = "/api/embeddings"
)

// Ollama generates embeddings through a local Ollama server.
type Ollama struct {
	baseURL string
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

// OllamaOption configures an Ollama provider.
type OllamaOption func(*Ollama)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) OllamaOption {
	return func(o *Ollama) { o.baseURL = url }
}

// WithModel sets the embedding model and its expected dimensions.
func WithModel(model string, dimensions int) OllamaOption {
	return func(o *Ollama) {
		o.config.Model = model
		o.config.Dimensions = dimensions
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) OllamaOption {
	return func(o *Ollama) { o.client.Timeout = timeout }
}

// WithRateLimit sets the maximum embed requests per second.
func WithRateLimit(perSecond float64) OllamaOption {
	return func(o *Ollama) { o.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// NewOllama creates an Ollama embedding provider.
func NewOllama(opts ...OllamaOption) *Ollama {
	o := &Ollama{
		baseURL: DefaultOllamaURL,
		config:  Config{Model: DefaultModel, Dimensions: DefaultDimensions},
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the embedding space this provider produces.
func (o *Ollama) Config() Config {
	return o.config
}

// BaseURL returns the Ollama API endpoint this provider talks to.
func (o *Ollama) BaseURL() string {
	return o.baseURL
}

// Embed generates an embedding for the given text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: o.config.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+apiPathEmbeddings, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Embedding) != o.config.Dimensions {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, want %d",
			len(result.Embedding), o.config.Dimensions)
	}

	return result.Embedding, nil
}

// IsAvailable checks if Ollama is running and accessible.
func (o *Ollama) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// HasModel checks if the configured model is available in Ollama.
func (o *Ollama) HasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+apiPathTags, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var result ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}

	for _, m := range result.Models {
		if m.Name == o.config.Model {
			return true, nil
		}
	}
	return false, nil
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(respBody)
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ollamaTagsResponse struct {
	Models []ollamaModel `json:"models"`
}

type ollamaModel struct {
	Name string `json:"name"`
}
