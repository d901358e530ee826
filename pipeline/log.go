package pipeline

import "context"

// Attempt is the outcome of one candidate-page fetch during a contact
// extraction run. Individual failures never abort the run; they are
// collected here instead of disappearing in control flow.
type Attempt struct {
	URL            string `json:"url"`
	Generated      bool   `json:"generated"`
	Success        bool   `json:"success"`
	EngineUsed     string `json:"engine_used,omitempty"`
	MarkdownLength int    `json:"markdown_length"`
	Error          string `json:"error,omitempty"`
}

// RunRecord summarizes one contact extraction run for the scrape log.
type RunRecord struct {
	BaseURL      string    `json:"base_url"`
	PagesScraped []string  `json:"pages_scraped"`
	Attempts     []Attempt `json:"attempts"`
	Method       string    `json:"method,omitempty"`
	Confidence   float64   `json:"confidence"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

// ScrapeLog receives run records from the pipeline. Implementations must
// not block the pipeline; deliver asynchronously if delivery is slow.
type ScrapeLog interface {
	RecordRun(ctx context.Context, run *RunRecord)
}

type nopScrapeLog struct{}

func (nopScrapeLog) RecordRun(context.Context, *RunRecord) {}
