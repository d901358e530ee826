package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lead-agent/prospect/models"
	tls "github.com/refraction-networking/utls"
)

// FetchEngine retrieves pages over plain HTTP without script execution.
// It is the fast, cheap path for static pages.
type FetchEngine struct {
	client         *http.Client
	insecureClient *http.Client
	timeout        time.Duration
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// NewFetchEngine creates a FetchEngine with a Chrome-like TLS fingerprint.
// ALPN is locked to http/1.1 to avoid the HTTP/2 framing mismatch that
// occurs when utls negotiates h2 but Go's http.Transport only speaks h1.
func NewFetchEngine(timeout time.Duration) *FetchEngine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FetchEngine{
		client:         newUTLSClient(false),
		insecureClient: newUTLSClient(true),
		timeout:        timeout,
	}
}

func newUTLSClient(insecure bool) *http.Client {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			cfg := &tls.Config{ServerName: host, InsecureSkipVerify: insecure}
			tlsConn := tls.UClient(conn, cfg, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetch_engine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

func (e *FetchEngine) Name() string { return "fetch" }

// Available always reports true; the fetch engine has no external runtime
// dependency.
func (e *FetchEngine) Available() bool { return true }

func (e *FetchEngine) Scrape(ctx context.Context, req *Request) (*Result, error) {
	opts := req.Options
	if opts == nil {
		opts = &models.ScrapeOptions{}
		opts.Defaults()
	}

	timeout := e.timeout
	if opts.TimeoutSeconds > 0 {
		timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch_engine: build request: %w", err)
	}

	// Simulate browser-like headers.
	httpReq.Header.Set("User-Agent", fetchUserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "identity")

	// Caller-supplied headers override the defaults.
	for k, v := range opts.Headers {
		httpReq.Header.Set(k, v)
	}

	client := e.client
	if opts.SkipTLSVerification {
		client = e.insecureClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch_engine: do request: %w", err)
	}
	defer resp.Body.Close()

	// Read body with a 10 MB limit to prevent unbounded memory use.
	const maxBody = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch_engine: read body: %w", err)
	}

	result := &Result{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineName: e.Name(),
	}

	// Error statuses and non-HTML bodies are failures so the orchestrator
	// can escalate to the render engine; the body still travels with the
	// result so partial content is not lost.
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 {
		return result, fmt.Errorf("fetch_engine: error status %d", resp.StatusCode)
	}
	if !isHTMLContentType(ct) {
		return result, fmt.Errorf("fetch_engine: unexpected content-type %q", ct)
	}
	return result, nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
