// Package discover finds subpages of a business website that are likely to
// carry legal or contact information (imprint, contact, team, about,
// leadership), tuned for German, Austrian and Swiss site conventions.
package discover

import (
	"net/url"
	"sort"
	"strings"
)

// Candidate is one contact-page candidate. Generated marks candidates built
// from the common-path catalog rather than found in the homepage's links.
type Candidate struct {
	URL       string
	Generated bool
}

// Keyword categories in descending priority. Earlier categories rank ahead
// of later ones; anything unmatched ranks last.
var priorityKeywords = [][]string{
	{"impressum", "imprint", "legal", "rechtliches"},
	{"kontakt", "contact", "get-in-touch", "ansprechpartner"},
	{"team", "our-team"},
	{"about", "ueber-uns", "uber-uns", "über-uns", "unternehmen", "firma", "company"},
	{"management", "geschaeftsfuehrung", "geschäftsführung", "leadership", "führung"},
}

// rankRest is the priority rank for URLs matching no keyword category.
var rankRest = len(priorityKeywords)

// pathCatalog is the fixed set of common contact-page paths tried against
// the site origin when homepage links alone are not enough.
var pathCatalog = []string{
	"/impressum",
	"/impressum.html",
	"/impressum.php",
	"/imprint",
	"/imprint.html",
	"/legal",
	"/legal-notice",
	"/rechtliches",
	"/kontakt",
	"/kontakt.html",
	"/contact",
	"/contact-us",
	"/team",
	"/ueber-uns",
	"/about",
	"/about-us",
	"/management",
	"/geschaeftsfuehrung",
}

// FindContactPages returns contact-page candidates for a site: links from
// the homepage that match a contact keyword and carry the same hostname as
// baseURL, plus the generated path catalog rooted at the site origin. The
// result is deduplicated and stably sorted by keyword priority (imprint
// first), with discovered links ahead of generated ones at equal priority.
func FindContactPages(links []string, baseURL string) []Candidate {
	base, err := url.Parse(baseURL)
	if err != nil || base.Hostname() == "" {
		return nil
	}

	seen := make(map[string]struct{})
	candidates := []Candidate{}

	add := func(raw string, generated bool) {
		key := strings.TrimSuffix(raw, "/")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, Candidate{URL: raw, Generated: generated})
	}

	for _, link := range links {
		u, err := base.Parse(link)
		if err != nil {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if !sameHost(u.Hostname(), base.Hostname()) {
			continue
		}
		if pathRank(u.Path) == rankRest {
			continue
		}
		u.Fragment = ""
		add(u.String(), false)
	}

	origin := base.Scheme + "://" + base.Host
	for _, p := range pathCatalog {
		add(origin+p, true)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return keywordRank(candidates[i].URL) < keywordRank(candidates[j].URL)
	})

	return candidates
}

// keywordRank ranks a URL by the keywords in its path. Matching only the
// path keeps hostnames like team-mueller.de from matching every link on the
// site; an unparseable URL ranks last.
func keywordRank(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rankRest
	}
	return pathRank(u.Path)
}

// pathRank returns the priority rank of the first keyword category the path
// matches case-insensitively, or rankRest when none matches.
func pathRank(path string) int {
	lower := strings.ToLower(path)
	for rank, keywords := range priorityKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return rank
			}
		}
	}
	return rankRest
}

// sameHost compares hostnames case-insensitively, treating a "www." prefix
// as equivalent to the bare domain.
func sameHost(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a == b
}
