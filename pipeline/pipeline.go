// Package pipeline is the externally consumed facade: it composes the
// engine orchestrator, the document transformer, the contact-page
// discoverer and the contact extractor into the scrape and
// contact-extraction flows.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/engine"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/transform"
)

// Scraper is the engine-side contract the pipeline builds on. The engine
// orchestrator satisfies it; tests substitute scripted implementations.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string, opts *models.ScrapeOptions) *engine.Result
}

// Pipeline is stateless per call and safe for concurrent use.
type Pipeline struct {
	scraper     Scraper
	transformer *transform.Transformer
	extractor   *extract.Extractor
	cfg         config.PipelineConfig
	scrapeLog   ScrapeLog
}

// New wires the pipeline. scrapeLog may be nil; run records are then
// dropped.
func New(scraper Scraper, transformer *transform.Transformer, extractor *extract.Extractor, cfg config.PipelineConfig, scrapeLog ScrapeLog) *Pipeline {
	if scrapeLog == nil {
		scrapeLog = nopScrapeLog{}
	}
	applyPipelineDefaults(&cfg)
	return &Pipeline{
		scraper:     scraper,
		transformer: transformer,
		extractor:   extractor,
		cfg:         cfg,
		scrapeLog:   scrapeLog,
	}
}

func applyPipelineDefaults(cfg *config.PipelineConfig) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxExtraPages <= 0 {
		cfg.MaxExtraPages = 4
	}
	if cfg.MaxFoundLinks <= 0 {
		cfg.MaxFoundLinks = 3
	}
	if cfg.MaxGeneratedCandidates <= 0 {
		cfg.MaxGeneratedCandidates = 3
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = 100
	}
}

// Scrape fetches one URL and transforms it into the requested formats.
func (p *Pipeline) Scrape(ctx context.Context, rawURL string, opts *models.ScrapeOptions) *models.ScrapeResult {
	rawURL, err := normalizeInputURL(rawURL)
	if err != nil {
		return failedScrape(models.ErrCodeInvalidURL, err.Error())
	}
	if opts == nil {
		opts = &models.ScrapeOptions{}
	}
	opts.Defaults()
	for _, f := range opts.Formats {
		if _, ok := models.ValidFormats[f]; !ok {
			return failedScrape(models.ErrCodeInvalidInput, fmt.Sprintf("unknown output format %q", f))
		}
	}

	res := p.scraper.Scrape(ctx, rawURL, opts)
	if !res.HasContent() {
		return failedScrape(models.ErrCodeNavigation, res.Error)
	}

	doc, err := p.transformer.BuildDocument(transform.Input{
		RawHTML:    res.HTML,
		SourceURL:  sourceURL(res, rawURL),
		StatusCode: res.StatusCode,
		Screenshot: res.Screenshot,
	}, opts)
	if err != nil {
		if se, ok := err.(*models.ScrapeError); ok {
			return failedScrape(se.Code, se.Message)
		}
		return failedScrape(models.ErrCodeTransform, err.Error())
	}

	return &models.ScrapeResult{
		Success:    true,
		Data:       doc,
		EngineUsed: res.EngineName,
	}
}

// ScrapeMany processes the URLs in fixed-size batches, each batch fully
// awaited before the next starts. The returned slice is positional: result
// i belongs to urls[i] regardless of completion order.
func (p *Pipeline) ScrapeMany(ctx context.Context, urls []string, opts *models.ScrapeOptions) []*models.ScrapeResult {
	results := make([]*models.ScrapeResult, len(urls))

	for start := 0; start < len(urls); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				perReq := cloneOptions(opts)
				results[idx] = p.Scrape(ctx, urls[idx], perReq)
			}(i)
		}
		wg.Wait()
	}

	return results
}

// PageContent is one URL's gathered markdown, for callers that run their
// own downstream extraction over page content.
type PageContent struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GatherContent scrapes each URL into markdown, batched like ScrapeMany.
func (p *Pipeline) GatherContent(ctx context.Context, urls []string, opts *models.ScrapeOptions) []PageContent {
	mdOpts := cloneOptions(opts)
	mdOpts.Formats = []string{models.FormatMarkdown}

	results := p.ScrapeMany(ctx, urls, mdOpts)
	contents := make([]PageContent, len(urls))
	for i, res := range results {
		contents[i] = PageContent{URL: urls[i]}
		if res.Success && res.Data != nil {
			contents[i].Markdown = res.Data.Markdown
		} else if res.Error != nil {
			contents[i].Error = res.Error.Message
		}
	}
	return contents
}

// cloneOptions copies the caller's options so concurrent requests and
// format overrides never mutate shared state.
func cloneOptions(opts *models.ScrapeOptions) *models.ScrapeOptions {
	clone := &models.ScrapeOptions{}
	if opts != nil {
		*clone = *opts
		clone.Formats = append([]string(nil), opts.Formats...)
	}
	clone.Defaults()
	return clone
}

// normalizeInputURL prepends https:// to scheme-less input and validates
// that the result is an absolute http(s) URL.
func normalizeInputURL(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("URL must resolve to an absolute http or https URL: %s", rawURL)
	}
	return u.String(), nil
}

func sourceURL(res *engine.Result, fallback string) string {
	if res.FinalURL != "" {
		return res.FinalURL
	}
	return fallback
}

func failedScrape(code, message string) *models.ScrapeResult {
	return &models.ScrapeResult{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	}
}
