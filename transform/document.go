package transform

import (
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/lead-agent/prospect/models"
)

// Transformer turns raw engine output into a structured Document. The
// markdown converter is created once and reused across all requests
// (goroutine-safe). The Transformer itself performs no network I/O.
type Transformer struct {
	mdConverter *converter.Converter
}

// New initialises a Transformer with a pre-configured markdown converter.
func New() *Transformer {
	return &Transformer{mdConverter: newMarkdownConverter()}
}

// Input is the raw material for one document build.
type Input struct {
	RawHTML    string
	SourceURL  string
	StatusCode int
	Screenshot []byte
}

// BuildDocument assembles a Document for the requested formats only.
//
// Flow:
//  1. Optional CSS-selector filter narrows the working HTML.
//  2. Optional readability pass extracts the main content.
//  3. Per-format conversion: markdown, cleaned HTML, raw HTML, links,
//     images, screenshot pass-through.
//  4. Metadata always extracted from the full raw HTML.
func (t *Transformer) BuildDocument(in Input, opts *models.ScrapeOptions) (*models.Document, error) {
	if opts == nil {
		opts = &models.ScrapeOptions{}
		opts.Defaults()
	}

	working := in.RawHTML
	if opts.CSSSelector != "" {
		filtered, err := ApplyCSSSelector(working, opts.CSSSelector)
		if err != nil {
			return nil, models.NewScrapeError(
				models.ErrCodeInvalidInput,
				"invalid CSS selector",
				err,
			)
		}
		working = filtered
	}

	cleaned := working
	if opts.MainContentOnly() {
		var ok bool
		cleaned, ok = MainContent(working, in.SourceURL)
		if !ok {
			slog.Debug("main content extraction fell back to full HTML", "url", in.SourceURL)
		}
	}

	doc := &models.Document{
		Metadata: ExtractMetadata(in.RawHTML, in.SourceURL, in.StatusCode),
	}

	if opts.WantsFormat(models.FormatMarkdown) || opts.WantsFormat(models.FormatJSON) {
		md, err := toMarkdown(t.mdConverter, cleaned, in.SourceURL)
		if err != nil {
			return nil, models.NewScrapeError(
				models.ErrCodeTransform,
				"markdown conversion failed",
				err,
			)
		}
		doc.Markdown = md
	}
	if opts.WantsFormat(models.FormatHTML) {
		doc.HTML = cleaned
	}
	if opts.WantsFormat(models.FormatRawHTML) {
		doc.RawHTML = in.RawHTML
	}
	if opts.WantsFormat(models.FormatLinks) {
		doc.Links = ExtractLinks(in.RawHTML, in.SourceURL)
		doc.Images = ExtractImages(in.RawHTML, in.SourceURL)
	}
	if opts.WantsFormat(models.FormatScreenshot) {
		doc.Screenshot = in.Screenshot
	}

	return doc, nil
}
