package transform

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lead-agent/prospect/models"
)

// ExtractLinks returns all anchor targets from rawHTML resolved against
// baseURL, deduplicated in first-seen order. Non-http(s) schemes (mailto:,
// tel:, javascript:) are dropped.
func ExtractLinks(rawHTML, baseURL string) []string {
	links := []string{}

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return links
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

// ExtractImages returns image sources with alt text, resolved absolute and
// deduplicated by resolved URL. Data URIs are skipped.
func ExtractImages(rawHTML, baseURL string) []models.Image {
	images := []models.Image{}

	base, err := url.Parse(baseURL)
	if err != nil {
		return images
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return images
	}

	seen := make(map[string]struct{})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme == "data" {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}

		alt, _ := s.Attr("alt")
		images = append(images, models.Image{
			Src: abs,
			Alt: strings.TrimSpace(alt),
		})
	})

	return images
}
