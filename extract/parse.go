package extract

import (
	"encoding/json"
	"strings"

	"github.com/lead-agent/prospect/models"
)

// parseContactJSON turns raw model output into ContactData. Models do not
// always obey the "JSON only" instruction, so three strategies are tried in
// order: the whole response as JSON, the body of a fenced code block, and
// the first balanced {...} span. First success wins.
func parseContactJSON(raw string) (*models.ContactData, error) {
	candidates := []string{strings.TrimSpace(raw)}

	if fenced := extractFencedBlock(raw); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if braced := extractBalancedBraces(raw); braced != "" {
		candidates = append(candidates, braced)
	}

	for _, candidate := range candidates {
		data := models.EmptyContactData()
		if err := json.Unmarshal([]byte(candidate), data); err == nil {
			normalizeContactData(data)
			return data, nil
		}
	}

	return nil, models.NewScrapeError(models.ErrCodeModelParse, "model response is not parseable JSON", nil)
}

// extractFencedBlock returns the body of the first ``` fenced block, with an
// optional language tag on the opening fence.
func extractFencedBlock(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		firstLine := strings.TrimSpace(rest[:nl])
		if len(firstLine) <= 8 {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// extractBalancedBraces returns the first balanced top-level {...} span,
// brace counting outside of string literals.
func extractBalancedBraces(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1]
				}
			}
		}
	}
	return ""
}

// normalizeContactData replaces nil collections so the result always encodes
// lists, lowercases emails, and drops duplicate emails and phones. Models
// happily repeat the same address in different casings.
func normalizeContactData(data *models.ContactData) {
	emails := make([]string, 0, len(data.Emails))
	seenEmails := make(map[string]struct{}, len(data.Emails))
	for _, e := range data.Emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, dup := seenEmails[e]; dup {
			continue
		}
		seenEmails[e] = struct{}{}
		emails = append(emails, e)
	}
	data.Emails = emails

	phones := make([]string, 0, len(data.Phones))
	seenPhones := make(map[string]struct{}, len(data.Phones))
	for _, p := range data.Phones {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seenPhones[p]; dup {
			continue
		}
		seenPhones[p] = struct{}{}
		phones = append(phones, p)
	}
	data.Phones = phones

	if data.Addresses == nil {
		data.Addresses = []string{}
	}
	if data.ContactPersons == nil {
		data.ContactPersons = []models.ContactPerson{}
	}
	if data.SocialLinks == nil {
		data.SocialLinks = map[string]string{}
	}
}
