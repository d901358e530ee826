package extract

import (
	"testing"

	"github.com/lead-agent/prospect/models"
)

const validContactJSON = `{
	"emails": ["Info@Beispiel.DE"],
	"phones": ["+49 30 123456"],
	"contact_persons": [
		{"first_name": "Max", "last_name": "Mustermann", "position": "Geschäftsführer"}
	],
	"company_name": "Beispiel GmbH",
	"vat_id": "DE123456789",
	"registration_number": "HRB 12345 B"
}`

func assertParsed(t *testing.T, data *models.ContactData) {
	t.Helper()
	if len(data.Emails) != 1 || data.Emails[0] != "info@beispiel.de" {
		t.Errorf("emails should be lowercased: %v", data.Emails)
	}
	if data.CompanyName != "Beispiel GmbH" {
		t.Errorf("company name = %q", data.CompanyName)
	}
	if len(data.ContactPersons) != 1 || data.ContactPersons[0].LastName != "Mustermann" {
		t.Errorf("persons = %+v", data.ContactPersons)
	}
	if data.Addresses == nil || data.SocialLinks == nil {
		t.Error("nil collections must be normalized to empty ones")
	}
}

func TestParseContactJSONDirect(t *testing.T) {
	data, err := parseContactJSON(validContactJSON)
	if err != nil {
		t.Fatalf("parseContactJSON: %v", err)
	}
	assertParsed(t, data)
}

func TestParseContactJSONFencedBlock(t *testing.T) {
	raw := "Hier ist das Ergebnis:\n```json\n" + validContactJSON + "\n```\nViel Erfolg!"
	data, err := parseContactJSON(raw)
	if err != nil {
		t.Fatalf("parseContactJSON: %v", err)
	}
	assertParsed(t, data)
}

func TestParseContactJSONBalancedBraces(t *testing.T) {
	raw := "Das extrahierte Objekt lautet " + validContactJSON + " und mehr Text danach."
	data, err := parseContactJSON(raw)
	if err != nil {
		t.Fatalf("parseContactJSON: %v", err)
	}
	assertParsed(t, data)
}

func TestParseContactJSONBracesInStrings(t *testing.T) {
	raw := `{"emails": [], "company_name": "Klammer { GmbH }"}`
	data, err := parseContactJSON(raw)
	if err != nil {
		t.Fatalf("parseContactJSON: %v", err)
	}
	if data.CompanyName != "Klammer { GmbH }" {
		t.Errorf("company name = %q", data.CompanyName)
	}
}

func TestParseContactJSONDeduplicates(t *testing.T) {
	raw := `{
		"emails": ["Info@Beispiel.de", "info@beispiel.de", " INFO@beispiel.de "],
		"phones": ["+49 30 123456", "+49 30 123456"]
	}`
	data, err := parseContactJSON(raw)
	if err != nil {
		t.Fatalf("parseContactJSON: %v", err)
	}
	if len(data.Emails) != 1 || data.Emails[0] != "info@beispiel.de" {
		t.Errorf("case variants of one email must collapse to one entry: %v", data.Emails)
	}
	if len(data.Phones) != 1 || data.Phones[0] != "+49 30 123456" {
		t.Errorf("repeated phone must collapse to one entry: %v", data.Phones)
	}
}

func TestParseContactJSONUnparseable(t *testing.T) {
	_, err := parseContactJSON("Es tut mir leid, ich kann keine Kontaktdaten finden.")
	if err == nil {
		t.Fatal("expected parse error")
	}
	se, ok := err.(*models.ScrapeError)
	if !ok || se.Code != models.ErrCodeModelParse {
		t.Errorf("expected %s, got %v", models.ErrCodeModelParse, err)
	}
}
