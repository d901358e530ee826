package models

// DocumentMetadata holds page-level information extracted from a scraped
// page. Every field except SourceURL and StatusCode is optional; an empty
// value means the page did not declare it, not that extraction failed.
type DocumentMetadata struct {
	SourceURL  string `json:"source_url"`
	StatusCode int    `json:"status_code"`

	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Language     string `json:"language,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Robots       string `json:"robots,omitempty"`
	Author       string `json:"author,omitempty"`
	CanonicalURL string `json:"canonical_url,omitempty"`
	Favicon      string `json:"favicon,omitempty"`

	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
	OGImage       string `json:"og_image,omitempty"`
	OGURL         string `json:"og_url,omitempty"`
	OGSiteName    string `json:"og_site_name,omitempty"`
	OGType        string `json:"og_type,omitempty"`

	TwitterCard        string `json:"twitter_card,omitempty"`
	TwitterTitle       string `json:"twitter_title,omitempty"`
	TwitterDescription string `json:"twitter_description,omitempty"`
	TwitterImage       string `json:"twitter_image,omitempty"`

	PublishedTime string `json:"published_time,omitempty"`
	ModifiedTime  string `json:"modified_time,omitempty"`
}

// Image is an image element extracted from a page, with its resolved
// absolute URL and first-seen alt text.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Document is the structured view of a single scraped page, populated only
// for the formats the caller requested. Built once per engine result.
type Document struct {
	Metadata DocumentMetadata `json:"metadata"`

	Markdown   string   `json:"markdown,omitempty"`
	HTML       string   `json:"html,omitempty"`
	RawHTML    string   `json:"raw_html,omitempty"`
	Links      []string `json:"links,omitempty"`
	Images     []Image  `json:"images,omitempty"`
	Screenshot []byte   `json:"screenshot,omitempty"`
}

// ScrapeResult is the facade-level outcome of scraping one URL.
type ScrapeResult struct {
	Success bool      `json:"success"`
	Data    *Document `json:"data,omitempty"`

	// EngineUsed records which engine produced the content ("fetch",
	// "render" or "render-stealth").
	EngineUsed string `json:"engine_used,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}
