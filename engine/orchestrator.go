package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/lead-agent/prospect/models"
)

// Orchestrator chooses an engine per request and runs the waterfall: if the
// chosen engine fails without content, the other engine is tried once,
// sequentially. It is the single place where raw engine errors are merged
// and classified; its Scrape never returns a Go error.
type Orchestrator struct {
	fetch  Engine
	render Engine
}

// NewOrchestrator wires the two engines. render may be unavailable; the
// orchestrator then never selects it and never falls back to it.
func NewOrchestrator(fetch, render Engine) *Orchestrator {
	return &Orchestrator{fetch: fetch, render: render}
}

// Scrape resolves the engine selection rule, runs the primary attempt and at
// most one sequential fallback, and returns a Result whose HTML is non-empty
// or whose Error is a classified human-readable message.
//
// Selection rule, first match wins: screenshot requested, scripted actions
// requested, or mobile viewport requested all force the render engine; a URL
// that looks static gets the fetch engine; everything else defaults to the
// render engine.
func (o *Orchestrator) Scrape(ctx context.Context, rawURL string, opts *models.ScrapeOptions) *Result {
	if opts == nil {
		opts = &models.ScrapeOptions{}
		opts.Defaults()
	}
	req := &Request{URL: rawURL, Options: opts}

	primary := o.selectEngine(rawURL, opts)
	first := o.attempt(ctx, primary, req)
	if first.Error == "" || first.HasContent() {
		// Partial content next to an error still counts as usable.
		return first
	}

	fallback := o.other(primary)
	if fallback == nil || !fallback.Available() {
		first.Error = classifyError(first.Error)
		return first
	}

	slog.Debug("engine fallback",
		"url", rawURL, "primary", primary.Name(), "fallback", fallback.Name(), "error", first.Error)

	second := o.attempt(ctx, fallback, req)
	if second.HasContent() {
		return second
	}

	first.Error = combineClassified(first.Error, second.Error)
	return first
}

// selectEngine applies the deterministic selection rule.
func (o *Orchestrator) selectEngine(rawURL string, opts *models.ScrapeOptions) Engine {
	wantsRender := opts.WantsFormat(models.FormatScreenshot) ||
		len(opts.Actions) > 0 ||
		opts.Mobile
	if !wantsRender && likelyStaticURL(rawURL) {
		return o.fetch
	}
	if o.render != nil && o.render.Available() {
		return o.render
	}
	return o.fetch
}

// other returns the engine not used as primary, or nil when there is none.
func (o *Orchestrator) other(primary Engine) Engine {
	if primary == o.fetch {
		return o.render
	}
	return o.fetch
}

// attempt runs one engine call with panic containment. Engine errors and
// panics never propagate; they become a Result with a populated error field.
func (o *Orchestrator) attempt(ctx context.Context, eng Engine, req *Request) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("engine panic recovered", "engine", eng.Name(), "url", req.URL, "panic", r)
			result = &Result{
				EngineName: eng.Name(),
				Error:      fmt.Sprintf("engine panic: %v", r),
			}
		}
	}()

	res, err := eng.Scrape(ctx, req)
	if res == nil {
		res = &Result{EngineName: eng.Name()}
	}
	if res.EngineName == "" {
		res.EngineName = eng.Name()
	}
	if err != nil && res.Error == "" {
		res.Error = err.Error()
	}
	return res
}

// staticExtensions are path suffixes that mark a page as server-rendered.
var staticExtensions = map[string]struct{}{
	".html":  {},
	".htm":   {},
	".php":   {},
	".asp":   {},
	".aspx":  {},
	".jsp":   {},
	".txt":   {},
	".xml":   {},
	".shtml": {},
}

// likelyStaticURL is a pure function of the URL string that decides whether
// the cheap fetch engine is worth trying first. A URL counts as likely
// static when its path carries a known server-rendered file extension and
// the URL shows no SPA routing markers ("#/" or "#!").
func likelyStaticURL(rawURL string) bool {
	if strings.Contains(rawURL, "#/") || strings.Contains(rawURL, "#!") {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	_, ok := staticExtensions[ext]
	return ok
}
