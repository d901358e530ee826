package models

// Output formats a caller can request for a scraped page.
const (
	FormatMarkdown   = "markdown"
	FormatHTML       = "html"
	FormatRawHTML    = "rawHtml"
	FormatLinks      = "links"
	FormatScreenshot = "screenshot"
	FormatJSON       = "json"
)

// ValidFormats is the closed set of accepted output formats.
var ValidFormats = map[string]struct{}{
	FormatMarkdown:   {},
	FormatHTML:       {},
	FormatRawHTML:    {},
	FormatLinks:      {},
	FormatScreenshot: {},
	FormatJSON:       {},
}

// ScrapeOptions carries all per-request scrape settings. A ScrapeOptions
// value is treated as immutable once handed to the pipeline.
type ScrapeOptions struct {
	// Formats is the set of outputs to produce. Defaults to ["markdown"].
	Formats []string `json:"formats,omitempty"`

	// OnlyMainContent strips navigation/boilerplate chrome before the
	// markdown conversion. Default: true.
	OnlyMainContent *bool `json:"only_main_content,omitempty"`

	// TimeoutSeconds is the deadline for the entire fetch/render operation.
	// Default: 30. Max: 120.
	TimeoutSeconds int `json:"timeout,omitempty"`

	// Headers are custom HTTP headers set on the outgoing request,
	// overriding the engine defaults on key collision.
	Headers map[string]string `json:"headers,omitempty"`

	// Actions is an ordered list of browser interactions executed after
	// navigation. Requesting actions forces the rendering engine.
	Actions []Action `json:"actions,omitempty"`

	// MobileViewport emulates a phone-sized viewport with a mobile
	// user-agent. Forces the rendering engine.
	Mobile bool `json:"mobile,omitempty"`

	// FullPageScreenshot captures the entire scroll height instead of
	// just the viewport. Only meaningful with the screenshot format.
	FullPageScreenshot bool `json:"full_page_screenshot,omitempty"`

	// SkipTLSVerification disables certificate verification for this
	// request (self-signed or expired certs on target sites).
	SkipTLSVerification bool `json:"skip_tls_verification,omitempty"`

	// Stealth enables anti-bot-detection evasions in the rendering engine.
	Stealth bool `json:"stealth,omitempty"`

	// WaitForSelector delays content extraction until the CSS selector
	// matches at least one element.
	WaitForSelector string `json:"wait_for_selector,omitempty"`

	// WaitMilliseconds delays content extraction by a fixed amount.
	WaitMilliseconds int `json:"wait_milliseconds,omitempty"`

	// CSSSelector optionally narrows the HTML passed to the transformer
	// to the matched elements' outer HTML.
	CSSSelector string `json:"css_selector,omitempty"`

	// CacheMaxAgeMs allows the API layer to serve a cached response no
	// older than this. The pipeline itself never caches.
	CacheMaxAgeMs int `json:"cache_max_age_ms,omitempty"`
}

// Defaults applies default values to unset fields.
func (o *ScrapeOptions) Defaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatMarkdown}
	}
	if o.OnlyMainContent == nil {
		t := true
		o.OnlyMainContent = &t
	}
	if o.TimeoutSeconds == 0 {
		o.TimeoutSeconds = 30
	}
	if o.TimeoutSeconds > 120 {
		o.TimeoutSeconds = 120
	}
}

// WantsFormat reports whether the given output format was requested.
func (o *ScrapeOptions) WantsFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// MainContentOnly resolves the OnlyMainContent pointer with its default.
func (o *ScrapeOptions) MainContentOnly() bool {
	return o.OnlyMainContent == nil || *o.OnlyMainContent
}

// Action is a single scripted browser interaction.
type Action struct {
	// Type is one of: "wait", "click", "type", "scroll", "execute_js".
	Type string `json:"type"`

	// Selector targets an element for click/type/wait actions.
	Selector string `json:"selector,omitempty"`

	// Text is the input for type actions.
	Text string `json:"text,omitempty"`

	// Milliseconds is the delay for wait actions without a selector.
	Milliseconds int `json:"milliseconds,omitempty"`

	// Direction ("up"/"down") and Amount (viewports) control scroll actions.
	Direction string `json:"direction,omitempty"`
	Amount    int    `json:"amount,omitempty"`

	// Code is the JavaScript source for execute_js actions.
	Code string `json:"code,omitempty"`
}
