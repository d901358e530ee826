// Package scrapelog delivers contact-run records to an external collector
// endpoint, signed with HMAC-SHA256.
package scrapelog

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/pipeline"
)

// envelope wraps a run record for delivery.
type envelope struct {
	Type      string              `json:"type"` // always "contact_run"
	Timestamp int64               `json:"timestamp"`
	Run       *pipeline.RunRecord `json:"run"`
}

// Recorder posts run records to the configured endpoint. It satisfies
// pipeline.ScrapeLog. Delivery happens in the background so the pipeline
// never waits on the collector.
type Recorder struct {
	cfg    config.ScrapeLogConfig
	client *http.Client
}

// New returns a Recorder, or nil when no endpoint is configured. A nil
// Recorder is not usable; callers pass nil straight to pipeline.New,
// which falls back to dropping records.
func New(cfg config.ScrapeLogConfig) *Recorder {
	if cfg.URL == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Recorder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// RecordRun delivers the record asynchronously with retries. The pipeline's
// context is not reused: the run is already finished when delivery starts.
func (r *Recorder) RecordRun(_ context.Context, run *pipeline.RunRecord) {
	ev := &envelope{
		Type:      "contact_run",
		Timestamp: time.Now().Unix(),
		Run:       run,
	}
	go r.deliverWithRetries(ev)
}

// retryDelays spaces the attempts out: immediate, then 1s, 5s, 30s, 30s...
func (r *Recorder) retryDelays() []time.Duration {
	base := []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
	delays := make([]time.Duration, 0, r.cfg.MaxRetries+1)
	for i := 0; i <= r.cfg.MaxRetries; i++ {
		if i < len(base) {
			delays = append(delays, base[i])
		} else {
			delays = append(delays, 30*time.Second)
		}
	}
	return delays
}

func (r *Recorder) deliverWithRetries(ev *envelope) {
	for attempt, delay := range r.retryDelays() {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
		err := r.deliver(ctx, ev)
		cancel()
		if err == nil {
			slog.Info("run record delivered",
				"url", r.cfg.URL,
				"base_url", ev.Run.BaseURL,
				"attempt", attempt+1,
			)
			return
		}
		slog.Warn("run record delivery failed",
			"url", r.cfg.URL,
			"base_url", ev.Run.BaseURL,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("run record delivery exhausted all retries",
		"url", r.cfg.URL,
		"base_url", ev.Run.BaseURL,
	)
}

// deliver posts one envelope. The body is signed when a secret is set:
// X-Prospect-Signature: sha256=<hex>.
func (r *Recorder) deliver(ctx context.Context, ev *envelope) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("scrapelog: marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("scrapelog: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Prospect-ScrapeLog/1.0")

	if r.cfg.Secret != "" {
		mac := hmac.New(sha256.New, []byte(r.cfg.Secret))
		mac.Write(body)
		req.Header.Set("X-Prospect-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("scrapelog: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("scrapelog: collector returned status %d", resp.StatusCode)
	}
	return nil
}
