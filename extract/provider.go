package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/models"
)

// Provider sends one completion request and returns the raw model text.
// Each supported model vendor gets one thin adapter; everything above the
// adapter (prompting, parsing, fallback) is provider-agnostic.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// providerDefaults carries the per-vendor endpoint and model fallbacks used
// when the configuration leaves them empty.
var providerDefaults = map[string]struct{ baseURL, model string }{
	"openai":    {"https://api.openai.com/v1", "gpt-4o-mini"},
	"deepseek":  {"https://api.deepseek.com/v1", "deepseek-chat"},
	"mistral":   {"https://api.mistral.ai/v1", "mistral-small-latest"},
	"anthropic": {"https://api.anthropic.com", "claude-3-5-haiku-latest"},
	"google":    {"https://generativelanguage.googleapis.com", "gemini-1.5-flash"},
}

// NewProvider dispatches on the configured provider identifier. Pass nil for
// httpClient to use a default client; tests inject their own transport.
func NewProvider(cfg config.ModelConfig, httpClient *http.Client) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, models.NewScrapeError(models.ErrCodeModelConfig, "model API key is not configured", nil)
	}
	defaults, ok := providerDefaults[cfg.Provider]
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeModelConfig,
			fmt.Sprintf("unknown model provider %q", cfg.Provider),
			nil,
		)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaults.baseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaults.model
	}

	switch cfg.Provider {
	case "anthropic":
		return &anthropicProvider{client: httpClient, apiKey: cfg.APIKey, baseURL: baseURL, model: model}, nil
	case "google":
		return &googleProvider{client: httpClient, apiKey: cfg.APIKey, baseURL: baseURL, model: model}, nil
	default:
		// openai, deepseek and mistral all speak the OpenAI chat API.
		return &openAIProvider{
			name: cfg.Provider, client: httpClient,
			apiKey: cfg.APIKey, baseURL: baseURL, model: model,
		}, nil
	}
}

// --- OpenAI-compatible adapter (openai, deepseek, mistral) ---

type openAIProvider struct {
	name    string
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	respBody, err := doJSON(ctx, p.client, endpoint, body, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	})
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "failed to parse provider response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "provider returned no choices", nil)
	}
	return chatResp.Choices[0].Message.Content, nil
}

// --- Anthropic adapter ---

type anthropicProvider struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       p.model,
		MaxTokens:   2048,
		Temperature: 0,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.baseURL, "/") + "/v1/messages"
	respBody, err := doJSON(ctx, p.client, endpoint, body, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "failed to parse provider response", err)
	}
	if len(resp.Content) == 0 {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "provider returned empty content", nil)
	}
	return resp.Content[0].Text, nil
}

// --- Google adapter ---

type googleProvider struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

type googleRequest struct {
	Contents []googleContent `json:"contents"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(googleRequest{
		Contents: []googleContent{{Parts: []googlePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(p.baseURL, "/"), p.model, p.apiKey)
	respBody, err := doJSON(ctx, p.client, endpoint, body, nil)
	if err != nil {
		return "", err
	}

	var resp googleResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "failed to parse provider response", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", models.NewScrapeError(models.ErrCodeModelFailure, "provider returned no candidates", nil)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// doJSON posts a JSON body and returns the response body, classifying error
// statuses into typed errors.
func doJSON(ctx context.Context, client *http.Client, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeModelFailure, "model request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeModelFailure, "failed to read model response", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, models.NewScrapeError(models.ErrCodeUnauthorized, "model provider rejected the API key", nil)
		case http.StatusTooManyRequests:
			return nil, models.NewScrapeError(models.ErrCodeRateLimited, "model provider rate limit exceeded", nil)
		default:
			return nil, models.NewScrapeError(
				models.ErrCodeModelFailure,
				fmt.Sprintf("model provider returned status %d", resp.StatusCode),
				nil,
			)
		}
	}
	return respBody, nil
}
