package engine

import (
	"context"

	"github.com/lead-agent/prospect/models"
)

// Engine is the interface both scrape engines implement.
type Engine interface {
	// Name returns the engine identifier ("fetch" or "render").
	Name() string

	// Available reports whether the engine can serve requests right now.
	// The render engine returns false when no browser could be launched.
	Available() bool

	// Scrape retrieves the page for the given request. Engines return a
	// raw error; only the orchestrator classifies errors into the fixed
	// category set.
	Scrape(ctx context.Context, req *Request) (*Result, error)
}

// Request carries everything an engine needs to scrape one URL.
type Request struct {
	URL     string
	Options *models.ScrapeOptions
}

// Result is the outcome of a single engine attempt. HTML may be non-empty
// even when Error is set (partial content after a render timeout); the
// orchestrator treats that case as a success.
type Result struct {
	HTML       string
	FinalURL   string
	StatusCode int
	Screenshot []byte
	EngineName string
	Error      string
}

// HasContent reports whether the attempt produced usable HTML.
func (r *Result) HasContent() bool {
	return r != nil && r.HTML != ""
}
