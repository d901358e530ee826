package scrapelog

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/pipeline"
)

func TestNewReturnsNilWithoutEndpoint(t *testing.T) {
	if r := New(config.ScrapeLogConfig{}); r != nil {
		t.Error("New without URL returned a Recorder")
	}
}

func TestDeliverSignsBody(t *testing.T) {
	secret := "s3cret"
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotSig = req.Header.Get("X-Prospect-Signature")
		gotBody, _ = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New(config.ScrapeLogConfig{URL: srv.URL, Secret: secret})
	ev := &envelope{
		Type:      "contact_run",
		Timestamp: time.Now().Unix(),
		Run:       &pipeline.RunRecord{BaseURL: "https://example.com", Success: true},
	}
	if err := r.deliver(context.Background(), ev); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var got envelope
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if got.Type != "contact_run" || got.Run.BaseURL != "https://example.com" {
		t.Errorf("delivered envelope = %+v", got)
	}
}

func TestDeliverNoSignatureWithoutSecret(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotSig = req.Header.Get("X-Prospect-Signature")
	}))
	defer srv.Close()

	r := New(config.ScrapeLogConfig{URL: srv.URL})
	if err := r.deliver(context.Background(), &envelope{Run: &pipeline.RunRecord{}}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if gotSig != "" {
		t.Errorf("signature header set without a secret: %q", gotSig)
	}
}

func TestDeliverRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := New(config.ScrapeLogConfig{URL: srv.URL})
	if err := r.deliver(context.Background(), &envelope{Run: &pipeline.RunRecord{}}); err == nil {
		t.Error("deliver accepted a 502 response")
	}
}

func TestRecordRunDeliversAsync(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		close(done)
	}))
	defer srv.Close()

	r := New(config.ScrapeLogConfig{URL: srv.URL})
	r.RecordRun(context.Background(), &pipeline.RunRecord{BaseURL: "https://example.com"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("record was not delivered")
	}
}

func TestRetryDelayCount(t *testing.T) {
	r := New(config.ScrapeLogConfig{URL: "https://collector.example.com", MaxRetries: 5})
	delays := r.retryDelays()
	if len(delays) != 6 {
		t.Errorf("got %d attempts for 5 retries, want 6", len(delays))
	}
	if delays[0] != 0 {
		t.Errorf("first attempt delayed by %v, want immediate", delays[0])
	}
}
