package engine

import (
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"dns no such host", `dial tcp: lookup example.invalid: no such host`, ErrDomainNotFound},
		{"chrome dns", "net::ERR_NAME_NOT_RESOLVED", ErrDomainNotFound},
		{"certificate", `x509: certificate signed by unknown authority`, ErrCertificate},
		{"chrome cert", "net::ERR_CERT_DATE_INVALID", ErrCertificate},
		{"timeout", "context deadline exceeded", ErrTimeout},
		{"chrome timeout", "net::ERR_TIMED_OUT", ErrTimeout},
		{"dial timeout", "dial tcp 1.2.3.4:443: i/o timeout", ErrTimeout},
		{"refused", "dial tcp 127.0.0.1:80: connect: connection refused", ErrConnectionRefused},
		{"reset", "read tcp: connection reset by peer", ErrConnectionReset},
		{"generic fetch", "fetch_engine: do request: something odd", ErrFetchFailed},
		{"empty", "", ErrFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.raw); got != tt.want {
				t.Errorf("classifyError(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorTruncatesUnknown(t *testing.T) {
	raw := strings.Repeat("z", 500)
	got := classifyError(raw)
	if len(got) != maxRawErrorLen {
		t.Errorf("unmatched error should be truncated to %d chars, got %d", maxRawErrorLen, len(got))
	}
}

func TestCombineClassified(t *testing.T) {
	t.Run("identical categories deduplicated", func(t *testing.T) {
		got := combineClassified("net::ERR_TIMED_OUT", "context deadline exceeded")
		if got != ErrTimeout {
			t.Errorf("got %q, want %q", got, ErrTimeout)
		}
	})

	t.Run("different categories concatenated", func(t *testing.T) {
		got := combineClassified("no such host", "connection refused")
		want := ErrDomainNotFound + "; " + ErrConnectionRefused
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("no fallback error", func(t *testing.T) {
		if got := combineClassified("no such host", ""); got != ErrDomainNotFound {
			t.Errorf("got %q, want %q", got, ErrDomainNotFound)
		}
	})
}
