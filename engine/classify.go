package engine

import "strings"

// Human-readable failure categories surfaced to callers in place of raw
// engine error text.
const (
	ErrDomainNotFound    = "Domain nicht gefunden (DNS-Fehler)"
	ErrCertificate       = "SSL-Zertifikatsfehler"
	ErrTimeout           = "Zeitüberschreitung beim Laden der Seite"
	ErrConnectionRefused = "Verbindung abgelehnt"
	ErrConnectionReset   = "Verbindung zurückgesetzt"
	ErrFetchFailed       = "Seite konnte nicht geladen werden"
)

// maxRawErrorLen bounds the last-resort raw message passed through when no
// category matches.
const maxRawErrorLen = 200

// classifyError maps raw engine error text to one of the fixed categories.
// Matching is best-effort substring matching on lowercased text; unmatched
// errors fall through as a truncated raw message.
func classifyError(raw string) string {
	if raw == "" {
		return ErrFetchFailed
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "no such host"),
		strings.Contains(lower, "name_not_resolved"),
		strings.Contains(lower, "dns"),
		strings.Contains(lower, "server misbehaving"):
		return ErrDomainNotFound
	case strings.Contains(lower, "certificate"),
		strings.Contains(lower, "x509"),
		strings.Contains(lower, "tls handshake"),
		strings.Contains(lower, "cert_"):
		return ErrCertificate
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed_out"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return ErrTimeout
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection_refused"):
		return ErrConnectionRefused
	case strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "connection_reset"),
		strings.Contains(lower, "broken pipe"):
		return ErrConnectionReset
	case strings.Contains(lower, "fetch"),
		strings.Contains(lower, "failed"),
		strings.Contains(lower, "refused"),
		strings.Contains(lower, "unreachable"):
		return ErrFetchFailed
	}
	if len(raw) > maxRawErrorLen {
		return raw[:maxRawErrorLen]
	}
	return raw
}

// combineClassified merges the classified errors of the primary and fallback
// attempts into one message, deduplicating identical categories.
func combineClassified(primary, fallback string) string {
	a := classifyError(primary)
	if fallback == "" {
		return a
	}
	b := classifyError(fallback)
	if a == b {
		return a
	}
	return a + "; " + b
}
