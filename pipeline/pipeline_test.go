package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/engine"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/transform"
)

// scriptedScraper serves canned HTML per URL and records every call.
type scriptedScraper struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (s *scriptedScraper) Scrape(_ context.Context, rawURL string, _ *models.ScrapeOptions) *engine.Result {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	s.mu.Unlock()

	html, ok := s.pages[rawURL]
	if !ok {
		return &engine.Result{EngineName: "fetch", Error: "Seite konnte nicht geladen werden"}
	}
	return &engine.Result{HTML: html, FinalURL: rawURL, StatusCode: 200, EngineName: "fetch"}
}

func (s *scriptedScraper) calledURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newTestPipeline(s Scraper, cfg config.PipelineConfig, log ScrapeLog) *Pipeline {
	return New(s, transform.New(), extract.NewWithProvider(nil), cfg, log)
}

// page renders a minimal HTML document. The body must be long enough that
// its markdown clears the pipeline's minimum content length.
func page(title, body string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p>", title, title, body)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href=%q>%s</a>`, l, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestScrapeRejectsInvalidURL(t *testing.T) {
	p := newTestPipeline(&scriptedScraper{}, config.PipelineConfig{}, nil)

	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative/path"} {
		res := p.Scrape(context.Background(), raw, nil)
		if res.Success {
			t.Errorf("Scrape(%q) succeeded, want failure", raw)
			continue
		}
		if res.Error == nil || res.Error.Code != models.ErrCodeInvalidURL {
			t.Errorf("Scrape(%q) error = %+v, want code %s", raw, res.Error, models.ErrCodeInvalidURL)
		}
	}
}

func TestScrapeRejectsUnknownFormat(t *testing.T) {
	p := newTestPipeline(&scriptedScraper{}, config.PipelineConfig{}, nil)

	res := p.Scrape(context.Background(), "https://example.com", &models.ScrapeOptions{
		Formats: []string{"pdf"},
	})
	if res.Success {
		t.Fatal("Scrape with unknown format succeeded, want failure")
	}
	if res.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error code = %s, want %s", res.Error.Code, models.ErrCodeInvalidInput)
	}
}

func TestScrapeSuccess(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		"https://example.com": page("Beispiel GmbH", "Wir liefern seit 1998 hochwertige Werkzeuge an Handwerksbetriebe in ganz Deutschland und beraten unsere Kunden bei der Auswahl."),
	}}
	p := newTestPipeline(scraper, config.PipelineConfig{}, nil)

	res := p.Scrape(context.Background(), "https://example.com", nil)
	if !res.Success {
		t.Fatalf("Scrape failed: %+v", res.Error)
	}
	if res.Data == nil || !strings.Contains(res.Data.Markdown, "Beispiel GmbH") {
		t.Errorf("markdown missing page content: %q", res.Data.Markdown)
	}
	if res.EngineUsed != "fetch" {
		t.Errorf("EngineUsed = %q, want fetch", res.EngineUsed)
	}
}

func TestScrapePrependsScheme(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		"https://example.com": page("Beispiel GmbH", "Wer keine Protokollangabe mitschickt, bekommt sie ergänzt und landet trotzdem auf der richtigen Seite mit dem vollständigen Inhalt."),
	}}
	p := newTestPipeline(scraper, config.PipelineConfig{}, nil)

	res := p.Scrape(context.Background(), "example.com", nil)
	if !res.Success {
		t.Fatalf("Scrape of scheme-less URL failed: %+v", res.Error)
	}
}

func TestScrapeNavigationFailure(t *testing.T) {
	p := newTestPipeline(&scriptedScraper{}, config.PipelineConfig{}, nil)

	res := p.Scrape(context.Background(), "https://down.example.com", nil)
	if res.Success {
		t.Fatal("Scrape of unreachable site succeeded, want failure")
	}
	if res.Error.Code != models.ErrCodeNavigation {
		t.Errorf("error code = %s, want %s", res.Error.Code, models.ErrCodeNavigation)
	}
	if res.Error.Message != "Seite konnte nicht geladen werden" {
		t.Errorf("error message = %q", res.Error.Message)
	}
}

func TestScrapeManyIsPositional(t *testing.T) {
	pages := map[string]string{}
	urls := make([]string, 7)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://site%d.example.com", i)
		pages[urls[i]] = page(fmt.Sprintf("Seite %d", i), fmt.Sprintf("Eindeutiger Inhalt der Seite Nummer %d mit genug Text, damit die Umwandlung in Markdown ein brauchbares Ergebnis liefert.", i))
	}
	scraper := &scriptedScraper{pages: pages}
	p := newTestPipeline(scraper, config.PipelineConfig{BatchSize: 5}, nil)

	results := p.ScrapeMany(context.Background(), urls, nil)
	if len(results) != len(urls) {
		t.Fatalf("got %d results, want %d", len(results), len(urls))
	}
	for i, res := range results {
		if !res.Success {
			t.Errorf("result %d failed: %+v", i, res.Error)
			continue
		}
		want := fmt.Sprintf("Seite %d", i)
		if !strings.Contains(res.Data.Markdown, want) {
			t.Errorf("result %d markdown does not contain %q", i, want)
		}
	}

	// The second batch must not start before the first is done.
	calls := scraper.calledURLs()
	firstBatch := map[string]bool{}
	for _, u := range calls[:5] {
		firstBatch[u] = true
	}
	for _, u := range urls[:5] {
		if !firstBatch[u] {
			t.Errorf("URL %s not scraped in first batch; call order %v", u, calls)
		}
	}
}

func TestGatherContent(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		"https://ok.example.com": page("Inhalt", "Dieser Absatz beschreibt unser Unternehmen ausführlich genug, um als eigenständiger Seiteninhalt durchzugehen und konvertiert zu werden."),
	}}
	p := newTestPipeline(scraper, config.PipelineConfig{}, nil)

	contents := p.GatherContent(context.Background(), []string{"https://ok.example.com", "https://down.example.com"}, nil)
	if len(contents) != 2 {
		t.Fatalf("got %d entries, want 2", len(contents))
	}
	if contents[0].Markdown == "" || contents[0].Error != "" {
		t.Errorf("first entry = %+v, want markdown and no error", contents[0])
	}
	if contents[1].Markdown != "" || contents[1].Error == "" {
		t.Errorf("second entry = %+v, want error and no markdown", contents[1])
	}
}

func TestCloneOptionsDoesNotShareFormats(t *testing.T) {
	orig := &models.ScrapeOptions{Formats: []string{models.FormatMarkdown}}
	clone := cloneOptions(orig)
	clone.Formats[0] = models.FormatLinks
	if orig.Formats[0] != models.FormatMarkdown {
		t.Error("mutating the clone's formats changed the original")
	}
}
