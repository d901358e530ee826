package models

// ContactPerson is a single person found on a business website, with the
// honorific/professional title already stripped from the name fields.
type ContactPerson struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Position  string `json:"position,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ContactData is the structured contact payload extracted from one or more
// pages of a business website.
type ContactData struct {
	Emails         []string          `json:"emails"`
	Phones         []string          `json:"phones"`
	Addresses      []string          `json:"addresses"`
	ContactPersons []ContactPerson   `json:"contact_persons"`
	SocialLinks    map[string]string `json:"social_links"`

	CompanyName        string `json:"company_name,omitempty"`
	VatID              string `json:"vat_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// EmptyContactData returns a ContactData with all collections initialised,
// so JSON encodes them as empty lists rather than null.
func EmptyContactData() *ContactData {
	return &ContactData{
		Emails:         []string{},
		Phones:         []string{},
		Addresses:      []string{},
		ContactPersons: []ContactPerson{},
		SocialLinks:    map[string]string{},
	}
}

// ContactExtractionResult is the outcome of a full scrape-and-extract run
// against a business website.
type ContactExtractionResult struct {
	Success bool         `json:"success"`
	Data    *ContactData `json:"data,omitempty"`

	// Confidence reflects extraction provenance: 0.9 baseline when a
	// language model returned parseable JSON, 0.6 for the regex fallback.
	Confidence float64 `json:"confidence"`

	SourceURL string `json:"source_url"`

	// PagesScraped lists every page actually fetched, homepage first,
	// in fetch order, without duplicates.
	PagesScraped []string `json:"pages_scraped"`

	Error string `json:"error,omitempty"`
}
