package transform

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lead-agent/prospect/models"
)

// maxDescriptionLength caps a description derived from body text.
const maxDescriptionLength = 300

// faviconRels is the ordered list of <link rel> variants checked for a
// favicon before defaulting to {origin}/favicon.ico.
var faviconRels = []string{
	"icon",
	"shortcut icon",
	"apple-touch-icon",
	"apple-touch-icon-precomposed",
	"mask-icon",
}

// ExtractMetadata parses document metadata from raw HTML. It is a pure
// function of its inputs; relative URLs are resolved against sourceURL.
func ExtractMetadata(rawHTML, sourceURL string, statusCode int) models.DocumentMetadata {
	meta := models.DocumentMetadata{
		SourceURL:  sourceURL,
		StatusCode: statusCode,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}
	base, _ := url.Parse(sourceURL)

	og := map[string]string{}
	tw := map[string]string{}
	named := map[string]string{}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if content == "" {
			return
		}
		if prop, ok := s.Attr("property"); ok {
			prop = strings.ToLower(prop)
			switch {
			case strings.HasPrefix(prop, "og:"):
				if _, dup := og[prop]; !dup {
					og[prop] = content
				}
			case prop == "article:published_time" || prop == "article:modified_time":
				if _, dup := named[prop]; !dup {
					named[prop] = content
				}
			}
			return
		}
		if name, ok := s.Attr("name"); ok {
			name = strings.ToLower(name)
			if strings.HasPrefix(name, "twitter:") {
				if _, dup := tw[name]; !dup {
					tw[name] = content
				}
				return
			}
			if _, dup := named[name]; !dup {
				named[name] = content
			}
		}
	})

	// Title fallback chain: og:title, <title>, first <h1>.
	meta.Title = og["og:title"]
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	// Description fallback chain: og:description, meta description, first
	// substantial paragraph truncated with an ellipsis.
	meta.Description = og["og:description"]
	if meta.Description == "" {
		meta.Description = named["description"]
	}
	if meta.Description == "" {
		doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if len(text) > 50 {
				if len(text) > maxDescriptionLength {
					text = text[:maxDescriptionLength] + "..."
				}
				meta.Description = text
				return false
			}
			return true
		})
	}

	// Language: html[lang], then xml:lang, then meta fallbacks.
	htmlSel := doc.Find("html").First()
	if lang, ok := htmlSel.Attr("lang"); ok && lang != "" {
		meta.Language = lang
	} else if lang, ok := htmlSel.Attr("xml:lang"); ok && lang != "" {
		meta.Language = lang
	} else if lang := named["language"]; lang != "" {
		meta.Language = lang
	} else if lang := og["og:locale"]; lang != "" {
		meta.Language = lang
	}

	meta.Keywords = named["keywords"]
	meta.Robots = named["robots"]
	meta.Author = named["author"]
	meta.PublishedTime = named["article:published_time"]
	meta.ModifiedTime = named["article:modified_time"]

	if canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		meta.CanonicalURL = resolveURL(base, canonical)
	}

	meta.Favicon = extractFavicon(doc, base)

	meta.OGTitle = og["og:title"]
	meta.OGDescription = og["og:description"]
	meta.OGImage = resolveURL(base, og["og:image"])
	meta.OGURL = og["og:url"]
	meta.OGSiteName = og["og:site_name"]
	meta.OGType = og["og:type"]

	meta.TwitterCard = tw["twitter:card"]
	meta.TwitterTitle = tw["twitter:title"]
	meta.TwitterDescription = tw["twitter:description"]
	meta.TwitterImage = resolveURL(base, tw["twitter:image"])

	return meta
}

// extractFavicon walks the ordered rel variants and returns the first hit,
// defaulting to {origin}/favicon.ico.
func extractFavicon(doc *goquery.Document, base *url.URL) string {
	for _, rel := range faviconRels {
		var found string
		doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			r, _ := s.Attr("rel")
			if !strings.EqualFold(strings.TrimSpace(r), rel) {
				return true
			}
			if href, ok := s.Attr("href"); ok && href != "" {
				found = href
				return false
			}
			return true
		})
		if found != "" {
			return resolveURL(base, found)
		}
	}
	if base != nil && base.Scheme != "" && base.Host != "" {
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	return ""
}

// resolveURL resolves ref against base, returning ref unchanged when either
// side cannot be parsed.
func resolveURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	if base == nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
