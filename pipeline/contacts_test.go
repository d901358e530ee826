package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/transform"
)

type recordingLog struct {
	mu   sync.Mutex
	runs []*RunRecord
}

func (l *recordingLog) RecordRun(_ context.Context, run *RunRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
}

func (l *recordingLog) lastRun(t *testing.T) *RunRecord {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.runs) == 0 {
		t.Fatal("no run was recorded")
	}
	return l.runs[len(l.runs)-1]
}

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, string) (string, error) {
	return p.response, p.err
}

const base = "https://firma.example.com"

var homeHTML = page("Firma Muster GmbH",
	"Seit über zwanzig Jahren planen und bauen wir individuelle Dachkonstruktionen für Gewerbekunden in Bayern. Unser Meisterbetrieb steht für termingerechte Ausführung und persönliche Betreuung auf der Baustelle.",
	"/impressum", "/team")

var impressumHTML = page("Impressum",
	"Firma Muster GmbH, Musterstraße 12, 80331 München. Geschäftsführer: Max Muster. "+
		"E-Mail: Info@Firma-Muster.de, Telefon: +49 89 1234567. Handelsregister: HRB 98765, Amtsgericht München.")

var teamHTML = page("Unser Team",
	"Unsere Mannschaft besteht aus zwölf Gesellen, drei Meistern und zwei Auszubildenden. Jedes Projekt wird von einem festen Ansprechpartner begleitet, der die Abstimmung mit Architekten und Statikern übernimmt.")

func TestContactsHomepageFailureAbortsRun(t *testing.T) {
	log := &recordingLog{}
	p := newTestPipeline(&scriptedScraper{}, config.PipelineConfig{}, log)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if res.Success {
		t.Fatal("extraction succeeded with unreachable homepage")
	}
	if len(res.PagesScraped) != 0 {
		t.Errorf("PagesScraped = %v, want empty", res.PagesScraped)
	}
	if res.Error != "Seite konnte nicht geladen werden" {
		t.Errorf("Error = %q", res.Error)
	}
	if run := log.lastRun(t); run.Success {
		t.Error("run record marked successful")
	}
}

func TestContactsRegexFallbackWithoutCredentials(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		base:                homeHTML,
		base + "/impressum": impressumHTML,
	}}
	log := &recordingLog{}
	p := newTestPipeline(scraper, config.PipelineConfig{}, log)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Error)
	}
	if res.Confidence != extract.RegexConfidence {
		t.Errorf("Confidence = %v, want %v", res.Confidence, extract.RegexConfidence)
	}
	if len(res.PagesScraped) < 2 || res.PagesScraped[0] != base {
		t.Fatalf("PagesScraped = %v, want homepage first plus the imprint", res.PagesScraped)
	}

	found := false
	for _, e := range res.Data.Emails {
		if e == "info@firma-muster.de" {
			found = true
		}
	}
	if !found {
		t.Errorf("Emails = %v, want lowercased info@firma-muster.de", res.Data.Emails)
	}
	if res.Data.ContactPersons == nil {
		t.Error("ContactPersons is nil, want empty slice from regex fallback")
	}
	if run := log.lastRun(t); run.Method != "regex" {
		t.Errorf("run method = %q, want regex", run.Method)
	}
}

func TestContactsModelPath(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		base:                homeHTML,
		base + "/impressum": impressumHTML,
	}}
	extractor := extract.NewWithProvider(&stubProvider{response: `{
		"emails": ["chef@firma-muster.de"],
		"phones": ["+49 89 1234567"],
		"addresses": ["Musterstraße 12, 80331 München"],
		"contact_persons": [{"first_name": "Max", "last_name": "Muster", "position": "Geschäftsführer"}],
		"social_links": {},
		"company_name": "Firma Muster GmbH",
		"registration_number": "HRB 98765"
	}`})
	p := New(scraper, transform.New(), extractor, config.PipelineConfig{}, nil)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Error)
	}
	if res.Confidence != extract.ModelConfidence {
		t.Errorf("Confidence = %v, want %v", res.Confidence, extract.ModelConfidence)
	}
	if res.Data.CompanyName != "Firma Muster GmbH" {
		t.Errorf("CompanyName = %q", res.Data.CompanyName)
	}
	if len(res.Data.ContactPersons) != 1 || res.Data.ContactPersons[0].LastName != "Muster" {
		t.Errorf("ContactPersons = %+v", res.Data.ContactPersons)
	}
}

func TestContactsStopsAfterMaxExtraPages(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{
		base:                homeHTML,
		base + "/impressum": impressumHTML,
		base + "/team":      teamHTML,
	}}
	p := newTestPipeline(scraper, config.PipelineConfig{MaxExtraPages: 1}, nil)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Error)
	}
	if len(res.PagesScraped) != 2 {
		t.Fatalf("PagesScraped = %v, want homepage plus exactly one extra page", res.PagesScraped)
	}
	// Imprint outranks team pages, so the imprint is the one extra page.
	if res.PagesScraped[1] != base+"/impressum" {
		t.Errorf("extra page = %s, want the imprint", res.PagesScraped[1])
	}
	for _, u := range scraper.calledURLs() {
		if u == base+"/team" {
			t.Error("team page was fetched after the extra-page budget was spent")
		}
	}
}

func TestContactsSkipsShortAndDuplicatePages(t *testing.T) {
	home := page("Firma Muster GmbH",
		"Seit über zwanzig Jahren planen und bauen wir individuelle Dachkonstruktionen für Gewerbekunden in Bayern. Unser Meisterbetrieb steht für termingerechte Ausführung und persönliche Betreuung auf der Baustelle.",
		"/impressum", "/team", "/kontakt")
	scraper := &scriptedScraper{pages: map[string]string{
		base:                home,
		base + "/impressum": page("Impressum", "Zu kurz."),
		base + "/kontakt":   teamHTML,
		base + "/team":      teamHTML, // byte-identical to the kontakt page
	}}

	log := &recordingLog{}
	p := newTestPipeline(scraper, config.PipelineConfig{}, log)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Error)
	}
	// Kontakt outranks team pages, so the kontakt page wins and the
	// identical team page is skipped as a duplicate.
	if len(res.PagesScraped) != 2 || res.PagesScraped[1] != base+"/kontakt" {
		t.Fatalf("PagesScraped = %v, want homepage plus the kontakt page only", res.PagesScraped)
	}

	run := log.lastRun(t)
	byURL := map[string]Attempt{}
	for _, a := range run.Attempts {
		byURL[a.URL] = a
	}
	if a := byURL[base+"/impressum"]; a.Success || a.Error != "content too short" {
		t.Errorf("imprint attempt = %+v, want content-too-short failure", a)
	}
	if a := byURL[base+"/team"]; a.Success || a.Error != "duplicate content" {
		t.Errorf("team attempt = %+v, want duplicate-content failure", a)
	}
}

func TestContactsRecoversFromPanic(t *testing.T) {
	scraper := &scriptedScraper{pages: map[string]string{base: homeHTML}}
	log := &recordingLog{}
	// A nil extractor panics during extraction, after the homepage has
	// already been scraped successfully.
	p := New(scraper, transform.New(), nil, config.PipelineConfig{}, log)

	res := p.ScrapeAndExtractContacts(context.Background(), base, nil)
	if res.Success {
		t.Fatal("extraction succeeded despite panicking extractor")
	}
	if !strings.HasPrefix(res.Error, "unexpected failure:") {
		t.Errorf("Error = %q, want unexpected-failure prefix", res.Error)
	}
	if len(res.PagesScraped) == 0 || res.PagesScraped[0] != base {
		t.Errorf("PagesScraped = %v, want the homepage preserved", res.PagesScraped)
	}
	if run := log.lastRun(t); run.Success {
		t.Error("run record marked successful after panic")
	}
}

func TestContactsRejectsInvalidURL(t *testing.T) {
	p := newTestPipeline(&scriptedScraper{}, config.PipelineConfig{}, nil)

	res := p.ScrapeAndExtractContacts(context.Background(), "not a url", nil)
	if res.Success {
		t.Fatal("extraction of invalid URL succeeded")
	}
	if len(res.PagesScraped) != 0 {
		t.Errorf("PagesScraped = %v, want empty", res.PagesScraped)
	}
}
