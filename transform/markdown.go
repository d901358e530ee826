package transform

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minReadableLength is the minimum extracted text length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content and keep the full HTML.
const minReadableLength = 50

// newMarkdownConverter creates a reusable, goroutine-safe Converter:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea and HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure with minimal cell padding,
//     since imprint pages often carry contact details in tables.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// MainContent runs the Mozilla Readability algorithm on rawHTML and returns
// the main-content HTML fragment.
//
// Fallback behaviour (a transform must never fail just because readability
// choked): invalid source URL, extraction errors, and too-short extractions
// all return the full rawHTML unchanged. The second return value reports
// whether readability succeeded.
func MainContent(rawHTML, sourceURL string) (string, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, keeping full HTML",
			"url", sourceURL, "error", err)
		return rawHTML, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, keeping full HTML",
			"url", sourceURL, "error", err)
		return rawHTML, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minReadableLength {
		slog.Warn("readability: extracted content too short, keeping full HTML",
			"url", sourceURL, "length", len(article.TextContent))
		return rawHTML, false
	}

	return article.Content, true
}

// toMarkdown converts an HTML fragment to Markdown. The domain parameter
// resolves relative URLs in <a> and <img> tags, so the output is
// self-contained.
func toMarkdown(conv *converter.Converter, htmlContent, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
