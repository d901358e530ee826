package discover

import (
	"strings"
	"testing"
)

func TestFindContactPagesSameHostnameOnly(t *testing.T) {
	links := []string{
		"https://beispiel.de/impressum",
		"https://www.beispiel.de/kontakt",
		"https://fremd.example.com/impressum",
		"https://beispiel.de.evil.example/kontakt",
	}
	candidates := FindContactPages(links, "https://beispiel.de/")

	for _, c := range candidates {
		if strings.Contains(c.URL, "fremd.example.com") || strings.Contains(c.URL, "evil.example") {
			t.Errorf("foreign hostname leaked into candidates: %s", c.URL)
		}
	}
}

func TestFindContactPagesImpressumBeforeTeam(t *testing.T) {
	links := []string{
		"https://beispiel.de/team",
		"https://beispiel.de/impressum",
	}
	candidates := FindContactPages(links, "https://beispiel.de/")
	if len(candidates) == 0 {
		t.Fatal("expected candidates")
	}

	var impressumIdx, teamIdx int = -1, -1
	for i, c := range candidates {
		if c.URL == "https://beispiel.de/impressum" && impressumIdx == -1 {
			impressumIdx = i
		}
		if c.URL == "https://beispiel.de/team" && teamIdx == -1 {
			teamIdx = i
		}
	}
	if impressumIdx == -1 || teamIdx == -1 {
		t.Fatalf("discovered links missing from candidates: %v", candidates)
	}
	if impressumIdx > teamIdx {
		t.Errorf("impressum (idx %d) must rank ahead of team (idx %d)", impressumIdx, teamIdx)
	}
}

func TestFindContactPagesDiscoveredBeforeGeneratedAtEqualPriority(t *testing.T) {
	links := []string{"https://beispiel.de/de/impressum-seite"}
	candidates := FindContactPages(links, "https://beispiel.de/")

	var discoveredIdx, generatedIdx = -1, -1
	for i, c := range candidates {
		if c.URL == "https://beispiel.de/de/impressum-seite" {
			discoveredIdx = i
		}
		if c.URL == "https://beispiel.de/impressum" && c.Generated {
			generatedIdx = i
		}
	}
	if discoveredIdx == -1 || generatedIdx == -1 {
		t.Fatalf("expected both discovered and generated impressum candidates: %v", candidates)
	}
	if discoveredIdx > generatedIdx {
		t.Error("discovered link must come before generated candidate at equal priority")
	}
}

func TestFindContactPagesDeduplicates(t *testing.T) {
	links := []string{
		"https://beispiel.de/impressum",
		"https://beispiel.de/impressum",
		"https://beispiel.de/impressum/",
	}
	candidates := FindContactPages(links, "https://beispiel.de/")

	count := 0
	for _, c := range candidates {
		if strings.TrimSuffix(c.URL, "/") == "https://beispiel.de/impressum" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("impressum URL should appear exactly once, got %d", count)
	}
}

func TestFindContactPagesRelativeLinksResolved(t *testing.T) {
	candidates := FindContactPages([]string{"/kontakt.html"}, "https://beispiel.de/")

	found := false
	for _, c := range candidates {
		if c.URL == "https://beispiel.de/kontakt.html" && !c.Generated {
			found = true
		}
	}
	if !found {
		t.Errorf("relative link not resolved into candidates: %v", candidates)
	}
}

func TestFindContactPagesIgnoresUnrelatedLinks(t *testing.T) {
	candidates := FindContactPages([]string{"https://beispiel.de/produkte/maschine-7"}, "https://beispiel.de/")
	for _, c := range candidates {
		if strings.Contains(c.URL, "produkte") {
			t.Errorf("non-contact link must not become a candidate: %s", c.URL)
		}
	}
}

func TestFindContactPagesKeywordInHostname(t *testing.T) {
	// Sites named after a keyword (team-mueller.de, firma-x.de) must not get
	// every internal link admitted as a contact candidate.
	links := []string{
		"https://team-mueller.de/produkte",
		"https://team-mueller.de/referenzen",
		"https://team-mueller.de/kontakt",
	}
	candidates := FindContactPages(links, "https://team-mueller.de/")

	kontaktFound := false
	for _, c := range candidates {
		if c.Generated {
			continue
		}
		switch c.URL {
		case "https://team-mueller.de/produkte", "https://team-mueller.de/referenzen":
			t.Errorf("hostname keyword admitted unrelated link: %s", c.URL)
		case "https://team-mueller.de/kontakt":
			kontaktFound = true
		}
	}
	if !kontaktFound {
		t.Error("contact link missing from discovered candidates")
	}
}

func TestFindContactPagesBadBase(t *testing.T) {
	if got := FindContactPages([]string{"https://beispiel.de/impressum"}, "://kaputt"); got != nil {
		t.Errorf("expected nil for unparseable base, got %v", got)
	}
}

func TestKeywordRankOrdering(t *testing.T) {
	urls := []string{
		"https://a.de/impressum",
		"https://a.de/kontakt",
		"https://a.de/team",
		"https://a.de/about",
		"https://a.de/management",
		"https://a.de/produkte",
	}
	for i := 1; i < len(urls); i++ {
		if keywordRank(urls[i-1]) >= keywordRank(urls[i]) {
			t.Errorf("rank(%s)=%d should be < rank(%s)=%d",
				urls[i-1], keywordRank(urls[i-1]), urls[i], keywordRank(urls[i]))
		}
	}
}
