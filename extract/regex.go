package extract

import (
	"regexp"
	"strings"

	"github.com/lead-agent/prospect/models"
)

// Deterministic fallback extraction. Runs without any configuration and has
// no preconditions; persons and addresses are always left empty because
// regexes cannot tell a name from arbitrary capitalized text.

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// German national and international phone formats, tried in order.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+49[\s\-]?\(?0?\)?[\s\-]?\d{1,4}[\s\-/]?\d{3,8}[\s\-]?\d{0,6}`),
	regexp.MustCompile(`\+\d{1,3}[\s\-]?\d{1,4}[\s\-/]?\d{3,8}[\s\-]?\d{0,6}`),
	regexp.MustCompile(`\b0\d{2,4}[\s\-/]{1,3}\d{3,8}(?:[\s\-]?\d{1,6})?`),
}

// One pattern per platform; the first match per platform wins.
var socialPatterns = []struct {
	platform string
	pattern  *regexp.Regexp
}{
	{"linkedin", regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/(?:company|in)/[A-Za-z0-9_\-.%]+`)},
	{"xing", regexp.MustCompile(`https?://(?:www\.)?xing\.com/(?:pages|profile|companies)/[A-Za-z0-9_\-.%]+`)},
	{"facebook", regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[A-Za-z0-9_\-.%]+`)},
	{"instagram", regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[A-Za-z0-9_\-.%]+`)},
	{"twitter", regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]+`)},
}

// RegexExtract runs the deterministic fallback over combined page content
// (markdown or plain text, mailto links included as-is).
func RegexExtract(content string) *models.ContactData {
	data := models.EmptyContactData()
	data.Emails = extractEmails(content)
	data.Phones = extractPhones(content)
	data.SocialLinks = extractSocialLinks(content)
	return data
}

// extractEmails returns all matched addresses lowercased and deduplicated
// in first-seen order.
func extractEmails(content string) []string {
	emails := []string{}
	seen := make(map[string]struct{})
	for _, match := range emailPattern.FindAllString(content, -1) {
		email := strings.ToLower(strings.Trim(match, "."))
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}

// extractPhones returns matched numbers with normalized whitespace,
// deduplicated by digit sequence. Matches with too few digits are noise
// (years, postal codes) and are dropped.
func extractPhones(content string) []string {
	phones := []string{}
	seen := make(map[string]struct{})
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(content, -1) {
			normalized := strings.Join(strings.Fields(match), " ")
			normalized = strings.TrimRight(normalized, " -/")
			digits := digitsOnly(normalized)
			if len(digits) < 7 || len(digits) > 15 {
				continue
			}
			if _, dup := seen[digits]; dup {
				continue
			}
			seen[digits] = struct{}{}
			phones = append(phones, normalized)
		}
	}
	return phones
}

// extractSocialLinks returns at most one profile URL per platform.
func extractSocialLinks(content string) map[string]string {
	links := map[string]string{}
	for _, sp := range socialPatterns {
		if _, ok := links[sp.platform]; ok {
			continue
		}
		if match := sp.pattern.FindString(content); match != "" {
			links[sp.platform] = match
		}
	}
	return links
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
