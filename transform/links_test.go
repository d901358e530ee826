package transform

import (
	"reflect"
	"testing"
)

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
		<a href="/impressum">Impressum</a>
		<a href="https://example.de/kontakt">Kontakt</a>
		<a href="/impressum">Impressum nochmal</a>
		<a href="mailto:info@example.de">Mail</a>
		<a href="tel:+4930123456">Anruf</a>
		<a href="javascript:void(0)">JS</a>
		<a href="https://other.example.com/page">Extern</a>
	</body></html>`

	got := ExtractLinks(html, "https://example.de/")
	want := []string{
		"https://example.de/impressum",
		"https://example.de/kontakt",
		"https://other.example.com/page",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks = %v, want %v", got, want)
	}
}

func TestExtractLinksBadBase(t *testing.T) {
	if got := ExtractLinks(`<a href="/x">x</a>`, "://bad"); len(got) != 0 {
		t.Errorf("expected no links for unparseable base, got %v", got)
	}
}

func TestExtractImages(t *testing.T) {
	html := `<html><body>
		<img src="/logo.png" alt=" Logo ">
		<img src="/logo.png" alt="dup">
		<img src="data:image/png;base64,AAAA">
		<img src="https://cdn.example.de/team.jpg">
	</body></html>`

	got := ExtractImages(html, "https://example.de/team")
	if len(got) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got))
	}
	if got[0].Src != "https://example.de/logo.png" || got[0].Alt != "Logo" {
		t.Errorf("first image = %+v", got[0])
	}
	if got[1].Src != "https://cdn.example.de/team.jpg" {
		t.Errorf("second image = %+v", got[1])
	}
}
