package transform

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	text := "Beispiel GmbH Musterstraße 1 10115 Berlin Geschäftsführer Max Mustermann"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("fingerprint must be deterministic for identical input")
	}
}

func TestFingerprintEmpty(t *testing.T) {
	if Fingerprint("") != 0 {
		t.Error("empty text should fingerprint to zero")
	}
	if Fingerprint("   \n\t ") != 0 {
		t.Error("whitespace-only text should fingerprint to zero")
	}
}

func TestFingerprintPunctuationInsensitive(t *testing.T) {
	a := Fingerprint("Kontakt: Max Mustermann, Berlin.")
	b := Fingerprint("kontakt max mustermann berlin")
	if a != b {
		t.Error("punctuation and case must not change the fingerprint")
	}
}

func TestSameContent(t *testing.T) {
	imprint := `Impressum Beispiel GmbH Musterstraße 1 10115 Berlin
		Telefon 030 123456 E-Mail info@beispiel.de Geschäftsführer Max Mustermann
		Handelsregister Amtsgericht Berlin HRB 12345 Umsatzsteuer-ID DE123456789`
	team := `Unser Team Anna Schmidt leitet den Vertrieb und betreut unsere Kunden
		in ganz Deutschland seit vielen Jahren mit großem Engagement und Erfahrung
		Peter Weber verantwortet die Entwicklung neuer Produkte und Technologien`

	if !SameContent(Fingerprint(imprint), Fingerprint(imprint)) {
		t.Error("identical content must match")
	}
	if SameContent(Fingerprint(imprint), Fingerprint(team)) {
		t.Error("unrelated pages must not match")
	}
	if SameContent(0, Fingerprint(imprint)) {
		t.Error("zero fingerprint must never match")
	}
}

func TestDistance(t *testing.T) {
	if Distance(0, 0) != 0 {
		t.Error("distance of equal values must be 0")
	}
	if Distance(0, 0xFFFFFFFFFFFFFFFF) != 64 {
		t.Error("distance of complements must be 64")
	}
}
