package extract

import "fmt"

// maxPromptContentLength caps the page content embedded into the prompt so
// oversized sites do not blow the provider's context window.
const maxPromptContentLength = 24000

// contactSchema is the JSON shape the model must return. Field names match
// models.ContactData so the response unmarshals directly.
const contactSchema = `{
  "emails": ["info@example.de"],
  "phones": ["+49 30 123456"],
  "addresses": ["Musterstraße 1, 10115 Berlin"],
  "contact_persons": [
    {
      "first_name": "Max",
      "last_name": "Mustermann",
      "full_name": "Dr. Max Mustermann",
      "position": "Geschäftsführer",
      "email": "m.mustermann@example.de",
      "phone": "+49 30 123456-7"
    }
  ],
  "social_links": {"linkedin": "https://www.linkedin.com/company/example"},
  "company_name": "Example GmbH",
  "vat_id": "DE123456789",
  "registration_number": "HRB 12345 B"
}`

// buildContactPrompt assembles the extraction prompt for the combined page
// content of a German/Austrian/Swiss business website.
func buildContactPrompt(content string) string {
	if len(content) > maxPromptContentLength {
		content = content[:maxPromptContentLength] + "..."
	}

	return fmt.Sprintf(`You are extracting contact information from the website of a German, Austrian or Swiss business. The content below comes from the homepage and its imprint (Impressum), contact, team and about pages.

Return a single JSON object with exactly this structure:

%s

Rules:
- Only extract information that is clearly stated in the content. NEVER invent a name, email, phone number or address. When in doubt, return empty lists instead of guessing.
- Separate honorific and academic titles (Dr., Prof., Mag., Dipl.-Ing.) and professional designations (Rechtsanwalt, Steuerberater) from first_name and last_name; keep the full form including titles in full_name.
- Role labels such as Geschäftsführer, Inhaber, Gesellschafter, Vorstand, Prokurist belong in position, never in the name fields.
- Normalize phone numbers to international form (+49 ..., +43 ..., +41 ...) where the country is clear; otherwise keep the printed form.
- vat_id is the Umsatzsteuer-ID (e.g. DE123456789); registration_number is the trade register entry (e.g. HRB 12345 B, FN 123456a, CHE-123.456.789).
- addresses are full postal addresses as single strings, street before postal code and city.
- social_links keys: linkedin, xing, facebook, instagram, twitter. Only include profiles of this company.
- Omit a field entirely rather than filling it with placeholders like "n/a" or "unbekannt".
- Return ONLY the JSON object, no markdown fences, no explanation.

Website content:

%s`, contactSchema, content)
}
