// Package extract produces structured contact data from scraped page
// content, either through a pluggable language-model provider or through a
// deterministic regex fallback.
package extract

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/models"
)

// Confidence baselines by extraction provenance.
const (
	ModelConfidence = 0.9
	RegexConfidence = 0.6
)

// Result is the extraction outcome before the pipeline attaches source URL
// and page trail.
type Result struct {
	Data       *models.ContactData
	Confidence float64

	// Method records how the data was obtained: "model" or "regex".
	Method string
}

// Extractor turns combined page content into contact data. The model
// provider is optional; without one every extraction uses the regex path.
type Extractor struct {
	provider Provider
}

// New builds an Extractor from configuration. A missing API key or unknown
// provider disables the model path instead of failing; the regex fallback
// has no preconditions.
func New(cfg config.ModelConfig, httpClient *http.Client) *Extractor {
	provider, err := NewProvider(cfg, httpClient)
	if err != nil {
		slog.Info("model extraction unavailable, regex fallback only", "reason", err)
		return &Extractor{}
	}
	return &Extractor{provider: provider}
}

// NewWithProvider builds an Extractor around an explicit provider. Used by
// tests and callers that construct providers themselves.
func NewWithProvider(p Provider) *Extractor {
	return &Extractor{provider: p}
}

// Extract produces contact data from the combined content of a site's
// pages. Model errors of any kind (transport, HTTP, unparseable response)
// resolve to the regex fallback rather than failing; the method never
// returns an error.
func (e *Extractor) Extract(ctx context.Context, content string) *Result {
	if e.provider == nil {
		return e.regexResult(content)
	}

	raw, err := e.provider.Complete(ctx, buildContactPrompt(content))
	if err != nil {
		slog.Warn("model extraction failed, falling back to regex",
			"provider", e.provider.Name(), "error", err)
		return e.regexResult(content)
	}

	data, err := parseContactJSON(raw)
	if err != nil {
		slog.Warn("model response unparseable, falling back to regex",
			"provider", e.provider.Name(), "error", err)
		return e.regexResult(content)
	}

	return &Result{Data: data, Confidence: ModelConfidence, Method: "model"}
}

func (e *Extractor) regexResult(content string) *Result {
	return &Result{
		Data:       RegexExtract(content),
		Confidence: RegexConfidence,
		Method:     "regex",
	}
}
