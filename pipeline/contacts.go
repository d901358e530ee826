package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lead-agent/prospect/discover"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/transform"
)

// contentSeparator joins the homepage markdown with each successful contact
// page's markdown, in fetch order.
const contentSeparator = "\n\n---\n\n"

// ScrapeAndExtractContacts runs the full contact flow for a business
// website: scrape the homepage, discover and fetch a bounded number of
// contact-like pages, concatenate their markdown, and extract structured
// contact data.
//
// Individual candidate failures never abort the run; they are collected in
// the attempt log. Any unexpected panic is converted into a failure result
// carrying the pages scraped so far.
func (p *Pipeline) ScrapeAndExtractContacts(ctx context.Context, rawURL string, opts *models.ScrapeOptions) (result *models.ContactExtractionResult) {
	run := &RunRecord{
		BaseURL:      rawURL,
		PagesScraped: []string{},
		Attempts:     []Attempt{},
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("contact extraction panicked", "url", rawURL, "panic", r)
			result = &models.ContactExtractionResult{
				Success:      false,
				SourceURL:    rawURL,
				PagesScraped: run.PagesScraped,
				Error:        fmt.Sprintf("unexpected failure: %v", r),
			}
		}
		run.Success = result.Success
		run.Confidence = result.Confidence
		run.Error = result.Error
		p.scrapeLog.RecordRun(ctx, run)
	}()

	normalized, err := normalizeInputURL(rawURL)
	if err != nil {
		return &models.ContactExtractionResult{
			Success:      false,
			SourceURL:    rawURL,
			PagesScraped: run.PagesScraped,
			Error:        err.Error(),
		}
	}
	rawURL = normalized
	run.BaseURL = rawURL

	// 1. Homepage: markdown for content, links for discovery, full page
	// because footers carry the imprint links.
	homeOpts := cloneOptions(opts)
	homeOpts.Formats = []string{models.FormatMarkdown, models.FormatLinks}
	fullPage := false
	homeOpts.OnlyMainContent = &fullPage

	homeRes := p.Scrape(ctx, rawURL, homeOpts)
	if !homeRes.Success || homeRes.Data == nil {
		msg := "homepage scrape failed"
		if homeRes.Error != nil {
			msg = homeRes.Error.Message
		}
		return &models.ContactExtractionResult{
			Success:      false,
			SourceURL:    rawURL,
			PagesScraped: run.PagesScraped,
			Error:        msg,
		}
	}

	run.PagesScraped = append(run.PagesScraped, rawURL)
	parts := []string{homeRes.Data.Markdown}
	fingerprints := []uint64{transform.Fingerprint(homeRes.Data.Markdown)}
	attempted := map[string]struct{}{normalizeURL(rawURL): {}}

	// 2. Ranked candidates: up to MaxFoundLinks discovered links, then up
	// to MaxGeneratedCandidates generated paths.
	order := p.attemptOrder(discover.FindContactPages(homeRes.Data.Links, rawURL))

	// 3. Attempt candidates strictly sequentially, in priority order, until
	// enough additional pages succeeded.
	extra := 0
	for _, cand := range order {
		if extra >= p.cfg.MaxExtraPages {
			break
		}
		key := normalizeURL(cand.URL)
		if _, dup := attempted[key]; dup {
			continue
		}
		attempted[key] = struct{}{}

		att := p.attemptCandidate(ctx, cand, opts, fingerprints)
		run.Attempts = append(run.Attempts, att.Attempt)
		if att.Success {
			run.PagesScraped = append(run.PagesScraped, cand.URL)
			parts = append(parts, att.markdown)
			fingerprints = append(fingerprints, att.fingerprint)
			extra++
		}
	}

	// 4. Extraction over the concatenated content. The extractor resolves
	// all model failures to the regex fallback, so this always succeeds.
	ext := p.extractor.Extract(ctx, strings.Join(parts, contentSeparator))
	run.Method = ext.Method

	return &models.ContactExtractionResult{
		Success:      true,
		Data:         ext.Data,
		Confidence:   ext.Confidence,
		SourceURL:    rawURL,
		PagesScraped: run.PagesScraped,
	}
}

// candidateOutcome carries one attempt's log entry plus the content needed
// when it succeeded.
type candidateOutcome struct {
	Attempt
	markdown    string
	fingerprint uint64
}

// attemptCandidate scrapes one contact-page candidate. A candidate succeeds
// only if the fetch succeeds, the markdown is longer than the configured
// minimum, and the content does not duplicate an already scraped page.
func (p *Pipeline) attemptCandidate(ctx context.Context, cand discover.Candidate, opts *models.ScrapeOptions, fingerprints []uint64) candidateOutcome {
	out := candidateOutcome{Attempt: Attempt{URL: cand.URL, Generated: cand.Generated}}

	pageOpts := cloneOptions(opts)
	pageOpts.Formats = []string{models.FormatMarkdown}
	fullPage := false
	pageOpts.OnlyMainContent = &fullPage

	res := p.Scrape(ctx, cand.URL, pageOpts)
	if !res.Success || res.Data == nil {
		if res.Error != nil {
			out.Error = res.Error.Message
		} else {
			out.Error = "scrape failed"
		}
		return out
	}

	md := res.Data.Markdown
	out.EngineUsed = res.EngineUsed
	out.MarkdownLength = len(md)

	if len(md) <= p.cfg.MinContentLength {
		out.Error = "content too short"
		return out
	}

	fp := transform.Fingerprint(md)
	for _, existing := range fingerprints {
		if transform.SameContent(fp, existing) {
			out.Error = "duplicate content"
			return out
		}
	}

	out.Success = true
	out.markdown = md
	out.fingerprint = fp
	return out
}

// attemptOrder splits ranked candidates into discovered and generated
// subsets, caps each, and returns discovered followed by generated.
func (p *Pipeline) attemptOrder(candidates []discover.Candidate) []discover.Candidate {
	var found, generated []discover.Candidate
	for _, c := range candidates {
		if c.Generated {
			if len(generated) < p.cfg.MaxGeneratedCandidates {
				generated = append(generated, c)
			}
		} else if len(found) < p.cfg.MaxFoundLinks {
			found = append(found, c)
		}
	}
	return append(found, generated...)
}

// normalizeURL canonicalizes a URL for the already-attempted set.
func normalizeURL(rawURL string) string {
	return strings.TrimSuffix(strings.ToLower(rawURL), "/")
}
