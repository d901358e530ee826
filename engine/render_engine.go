package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/devices"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/models"
	"github.com/ysmood/gson"
)

// RenderEngine retrieves pages through a headless browser. It executes page
// scripts, waits for content, captures screenshots, and runs scripted
// actions. It manages a shared browser process with a tab pool and is safe
// for concurrent use.
type RenderEngine struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	launchErr   error
	activePages atomic.Int32
}

// NewRenderEngine launches a headless browser and initialises the reusable
// page pool. Launch failure does not return an error; it is recorded and
// Available reports false, so callers can run fetch-only.
func NewRenderEngine(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *RenderEngine {
	e := &RenderEngine{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}

	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		e.launchErr = err
		slog.Warn("render engine unavailable: browser launch failed", "error", err)
		return e
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		e.launchErr = err
		slog.Warn("render engine unavailable: browser connect failed", "error", err)
		return e
	}

	e.browser = browser
	e.pagePool = rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)
	return e
}

func (e *RenderEngine) Name() string { return "render" }

// Available reports whether a browser is connected and ready.
func (e *RenderEngine) Available() bool { return e.launchErr == nil && e.browser != nil }

// ActivePages returns the number of tabs currently borrowed from the pool.
func (e *RenderEngine) ActivePages() int { return int(e.activePages.Load()) }

// Close drains the page pool and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (e *RenderEngine) Close() {
	if !e.Available() {
		return
	}
	slog.Info("render engine shutting down: draining page pool")
	e.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("render engine shutting down: closing browser")
	e.browser.MustClose()
	slog.Info("render engine shutdown complete")
}

// Scrape runs the full browser scrape lifecycle.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard          – hard deadline on the entire operation
//  2. Acquire page           – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup         – about:blank + return to pool (leak prevention)
//  4. Stealth injection      – mask navigator.webdriver etc. (before navigation!)
//  5. Emulation & headers    – mobile preset, TLS ignore, extra headers
//  6. Hijack mount           – block images/CSS/fonts/media unless a screenshot is wanted
//  7. Context binding        – propagate timeout to all Rod operations
//  8. Navigate               – triggers page load
//  9. Wait                   – selector, fixed delay, or DOM stable
//  10. Actions & extract     – scripted actions, HTML, screenshot
//
// Steps 4-6 must happen before step 8: stealth JS, emulation overrides and
// resource blocking only take effect for navigations after they are
// installed. Step 3's about:blank uses the ORIGINAL page reference (without
// request context), so cleanup succeeds even if the request context expired.
func (e *RenderEngine) Scrape(ctx context.Context, req *Request) (*Result, error) {
	if !e.Available() {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "render engine is not available", e.launchErr)
	}

	opts := req.Options
	if opts == nil {
		opts = &models.ScrapeOptions{}
		opts.Defaults()
	}

	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := time.Duration(opts.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = e.scraperCfg.DefaultTimeout
	}
	if timeout > e.scraperCfg.MaxTimeout {
		timeout = e.scraperCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	e.activePages.Add(1)
	defer e.activePages.Add(-1)

	page, acquireErr := e.pagePool.Get(func() (*rod.Page, error) {
		return e.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	// ── 3. CRITICAL DEFER: prevent DOM memory leak + guarantee pool return
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		e.pagePool.Put(page)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// ── 5a. Mobile viewport preset ───────────────────────────────────
	if opts.Mobile {
		if emuErr := page.Emulate(devices.IPhoneX); emuErr != nil {
			slog.Warn("mobile emulation failed, proceeding with desktop viewport", "error", emuErr)
		}
	}

	// ── 5b. TLS certificate bypass ───────────────────────────────────
	if opts.SkipTLSVerification {
		_ = proto.SecuritySetIgnoreCertificateErrors{Ignore: true}.Call(page)
	}

	// ── 5c. Extra headers (custom + Google Referer) ──────────────────
	extraHeaders := make(map[string]string, len(opts.Headers)+1)
	if _, hasReferer := opts.Headers["Referer"]; !hasReferer {
		if u, parseErr := url.Parse(req.URL); parseErr == nil {
			extraHeaders["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range opts.Headers {
		extraHeaders[k] = v
	}
	if len(extraHeaders) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(extraHeaders),
		}.Call(page)
	}

	// ── 6. Mount hijack router ───────────────────────────────────────
	// Resource blocking is skipped when a screenshot is requested, since a
	// screenshot without images and styles is useless.
	if !opts.WantsFormat(models.FormatScreenshot) {
		router := setupResourceBlocking(page, e.scraperCfg.BlockedResourceTypes)
		if router != nil {
			defer func() { _ = router.Stop() }()
		}
	}

	// ── 7. Bind request context to page ──────────────────────────────
	p := page.Context(ctx)

	// ── 8. Navigate ──────────────────────────────────────────────────
	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeNavError(navErr, "navigation to target URL failed")
	}

	// ── 9. Wait strategy ─────────────────────────────────────────────
	waitTimedOut := false
	switch {
	case opts.WaitForSelector != "":
		if waitErr := p.WaitElementsMoreThan(opts.WaitForSelector, 0); waitErr != nil {
			slog.Debug("wait selector did not appear, proceeding with current DOM",
				"selector", opts.WaitForSelector, "error", waitErr)
			waitTimedOut = true
		}
	case opts.WaitMilliseconds > 0:
		select {
		case <-time.After(time.Duration(opts.WaitMilliseconds) * time.Millisecond):
		case <-ctx.Done():
			waitTimedOut = true
		}
	default:
		if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
			slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
			waitTimedOut = true
		}
	}

	// ── 9b. Collect status code via JS (best-effort) ─────────────────
	// performance.getEntriesByType("navigation") exposes the HTTP status
	// without needing CDP event listeners.
	var statusCode int
	if res, evalErr := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); evalErr == nil {
		statusCode = res.Value.Int()
	}

	// ── 9c. Remove overlays (cookie banners, popups) ─────────────────
	removeOverlays(p)

	// ── 10a. Execute scripted actions ────────────────────────────────
	if len(opts.Actions) > 0 {
		if actErr := executeActions(ctx, page, opts.Actions); actErr != nil {
			return nil, actErr
		}
	}

	// ── 10b. Extract rendered HTML ───────────────────────────────────
	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeNavError(htmlErr, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	result := &Result{
		HTML:       rawHTML,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: e.Name(),
	}

	// ── 10c. Screenshot ──────────────────────────────────────────────
	if opts.WantsFormat(models.FormatScreenshot) {
		shot, shotErr := p.Screenshot(opts.FullPageScreenshot, nil)
		if shotErr != nil {
			slog.Warn("screenshot capture failed", "url", req.URL, "error", shotErr)
		} else {
			result.Screenshot = shot
		}
	}

	// A wait that never converged still produced HTML; surface the timeout
	// next to the partial content so the orchestrator can judge it.
	if waitTimedOut && ctx.Err() != nil {
		result.Error = ErrTimeout
	}
	return result, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// removeOverlays injects JS to remove fixed/sticky positioned elements with
// high z-index, which are typically cookie consent banners and popup overlays.
func removeOverlays(p *rod.Page) {
	const js = `() => {
		const els = document.querySelectorAll('*');
		for (const el of els) {
			const style = window.getComputedStyle(el);
			const pos = style.position;
			if (pos === 'fixed' || pos === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900 || style.zIndex === 'auto') {
					el.remove();
				}
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
			'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
			'[class*="popup"]', '[id*="popup"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
					el.remove();
				}
			});
		}
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`
	_, _ = p.Eval(js)
}

// categorizeNavError wraps raw errors into typed ScrapeErrors so callers can
// map them to appropriate status codes.
func categorizeNavError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
