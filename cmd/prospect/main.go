package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lead-agent/prospect/api"
	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/engine"
	"github.com/lead-agent/prospect/extract"
	"github.com/lead-agent/prospect/pipeline"
	"github.com/lead-agent/prospect/scrapelog"
	"github.com/lead-agent/prospect/transform"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("prospect starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Initialise engines (render launches the browser) ─────────
	fetch := engine.NewFetchEngine(cfg.Scraper.FetchTimeout)
	render := engine.NewRenderEngine(cfg.Browser, cfg.Scraper)
	defer render.Close()
	if !render.Available() {
		slog.Warn("rendering engine unavailable, running fetch-only")
	}

	orchestrator := engine.NewOrchestrator(fetch, render)

	// ── 4. Initialise transformer + extractor ───────────────────────
	transformer := transform.New()
	extractor := extract.New(cfg.Model, nil)

	// ── 4b. Scrape log (optional collector endpoint) ────────────────
	var runLog pipeline.ScrapeLog
	if rec := scrapelog.New(cfg.ScrapeLog); rec != nil {
		runLog = rec
		slog.Info("scrape log enabled", "url", cfg.ScrapeLog.URL)
	}

	p := pipeline.New(orchestrator, transformer, extractor, cfg.Pipeline, runLog)

	// ── 4c. Initialise response cache ───────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(p, render, cfg, cc, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// render.Close() runs via defer — drains the page pool and kills Chrome.
	slog.Info("prospect stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
