package extract

import (
	"reflect"
	"testing"
)

func TestExtractEmailsDeduplicatesAndLowercases(t *testing.T) {
	got := extractEmails("Contact: a@b.de or a@b.de, alternativ Info@Beispiel.DE")
	want := []string{"a@b.de", "info@beispiel.de"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractEmails = %v, want %v", got, want)
	}
}

func TestExtractEmailsNoMatch(t *testing.T) {
	got := extractEmails("kein Kontakt auf dieser Seite")
	if len(got) != 0 {
		t.Errorf("expected no emails, got %v", got)
	}
}

func TestExtractPhones(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"international german", "Telefon: +49 30 123456", 1},
		{"national german", "Tel: 030 / 123456", 1},
		{"austrian", "Telefon +43 1 5332979", 1},
		{"duplicate formats deduped", "Tel +49 30 123456 oder +49-30-123456", 1},
		{"plain year ignored", "Gegründet 1998 in Berlin", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPhones(tt.content)
			if len(got) != tt.want {
				t.Errorf("extractPhones(%q) = %v, want %d matches", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractSocialLinksOnePerPlatform(t *testing.T) {
	content := `Folgen Sie uns:
	https://www.linkedin.com/company/beispiel-gmbh
	https://www.linkedin.com/company/zweitprofil
	https://www.xing.com/pages/beispielgmbh
	https://www.facebook.com/beispielgmbh
	https://www.instagram.com/beispiel_gmbh
	https://twitter.com/beispiel`

	got := extractSocialLinks(content)
	if len(got) != 5 {
		t.Fatalf("expected 5 platforms, got %d: %v", len(got), got)
	}
	if got["linkedin"] != "https://www.linkedin.com/company/beispiel-gmbh" {
		t.Errorf("linkedin: first match must win, got %q", got["linkedin"])
	}
	if got["xing"] != "https://www.xing.com/pages/beispielgmbh" {
		t.Errorf("xing = %q", got["xing"])
	}
}

func TestRegexExtractShape(t *testing.T) {
	data := RegexExtract("Impressum. E-Mail: info@beispiel.de, Telefon +49 30 123456.")
	if len(data.Emails) != 1 || len(data.Phones) != 1 {
		t.Errorf("unexpected extraction: %+v", data)
	}
	if data.ContactPersons == nil || len(data.ContactPersons) != 0 {
		t.Error("regex path must return an empty, non-nil persons list")
	}
	if data.Addresses == nil || len(data.Addresses) != 0 {
		t.Error("regex path must return an empty, non-nil addresses list")
	}
}
