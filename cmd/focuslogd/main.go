// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Command focuslogd records desktop activity into SQLite and serves
// the compressed activity timeline to MCP clients over stdio.
//
// Two background loops run for the life of the process: the APM
// sampler polls the X11 idle timer to count input activity, and the
// snapshot recorder writes one (timestamp, title, apm) row per
// interval. The MCP server on stdin/stdout exposes a single
// get_activity_log tool that compresses the stored rows into a
// privacy-redacted timeline.
//
// Stdout belongs to the MCP transport; all logging goes to a rotating
// file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/focuslog/focuslog/lib/apm"
	"github.com/focuslog/focuslog/lib/clock"
	"github.com/focuslog/focuslog/lib/config"
	"github.com/focuslog/focuslog/lib/desktop"
	"github.com/focuslog/focuslog/lib/llm"
	"github.com/focuslog/focuslog/lib/mcp"
	"github.com/focuslog/focuslog/lib/process"
	"github.com/focuslog/focuslog/lib/redact"
	"github.com/focuslog/focuslog/lib/title"
)

const version = "0.1.0"

// probeTimeout bounds each external tool invocation (xdotool,
// xprintidle, gdbus). Generous relative to normal sub-millisecond
// execution; a hung X session should not wedge a whole cycle.
const probeTimeout = 5 * time.Second

func main() {
	configPath := pflag.String("config", "", "path to the YAML configuration file")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println("focuslogd " + version)
		return
	}

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		process.Fatal(err)
	}

	// Missing desktop tools are a startup failure, not something to
	// retry: without them every cycle would fail identically.
	if err := desktop.CheckTools(); err != nil {
		process.Fatal(err)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		process.Fatal(err)
	}
}

// newLogger builds the daemon's JSON logger over a size-rotated file.
// Stdout carries the MCP transport, so nothing may log there.
func newLogger(cfg config.Config) *slog.Logger {
	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxMegabytes,
		MaxBackups: cfg.LogBackups,
	}
	return slog.New(slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("focuslogd starting", "version", version, "db_path", cfg.DBPath)

	store, err := openStore(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	probe := desktop.NewProbe(probeTimeout, logger)
	ledger := apm.NewLedger(cfg.APMWindow.Std())

	sampler, err := apm.NewSampler(apm.SamplerConfig{
		PollInterval: cfg.APMPollInterval.Std(),
		Idle:         probe.IdleMillis,
		Ledger:       ledger,
		Clock:        clock.Real(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	rules := make([]title.Rule, len(cfg.CleanupRules))
	for i, rule := range cfg.CleanupRules {
		rules[i] = title.Rule{Keyword: rule.Keyword, CleanName: rule.CleanName}
	}
	sanitizer := title.NewSanitizer(cfg.KnownBrowsers, rules, cfg.MaxTitleLength)

	rec, err := newRecorder(recorderConfig{
		Store:        store,
		ScreenLocked: probe.ScreenLocked,
		WindowTitle:  probe.ActiveWindowTitle,
		Ledger:       ledger,
		Sanitizer:    sanitizer,
		Interval:     cfg.SnapshotInterval.Std(),
		Retention:    cfg.Retention(),
		Clock:        clock.Real(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	var provider llm.Provider
	if cfg.Rewrite.Enabled {
		provider = llm.NewOpenAI(&http.Client{}, cfg.Rewrite.BaseURL)
	}
	redactor, err := redact.NewRedactor(redact.RedactorConfig{
		ForbiddenKeywords: cfg.ForbiddenKeywords,
		Provider:          provider,
		Model:             cfg.Rewrite.Model,
		Timeout:           cfg.Rewrite.Timeout.Std(),
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	resolver, err := redact.NewResolver(redact.ResolverConfig{
		Cache:       redact.NewCache(),
		Redact:      redactor.Redact,
		MaxParallel: cfg.MaxParallelRedactions,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	query := &querier{
		store:            store,
		resolver:         resolver,
		clock:            clock.Real(),
		retentionHours:   cfg.RetentionHours,
		snapshotInterval: cfg.SnapshotInterval.Std(),
		minBlockFraction: cfg.MinBlockFraction,
		logger:           logger,
	}

	server, err := mcp.NewServer(mcp.ServerConfig{
		Name:    "focuslog",
		Version: version,
		Tools:   []mcp.Tool{activityLogTool(query)},
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var background sync.WaitGroup
	background.Add(2)
	go func() {
		defer background.Done()
		sampler.Run(ctx)
	}()
	go func() {
		defer background.Done()
		rec.Run(ctx)
	}()

	// The MCP loop blocks on stdin reads, which do not unblock on
	// context cancellation. It runs in its own goroutine so a signal
	// can still shut the daemon down; process exit reclaims the read.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serverErr:
		logger.Info("mcp client disconnected")
		stop()
	}
	background.Wait()
	logger.Info("focuslogd stopped")
	return err
}

// activityLogTool exposes the timeline query as the daemon's single
// MCP tool.
func activityLogTool(query *querier) mcp.Tool {
	readOnly := true
	idempotent := true
	openWorld := false
	return mcp.Tool{
		Name: "get_activity_log",
		Description: "Retrieves activity, anonymizes titles, and summarizes it " +
			"into a compressed timeline with average APM for each period.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"hours_ago": {
					"type": "integer",
					"description": "How many hours back to retrieve the log for. Defaults to 1.",
					"default": 1
				}
			}
		}`),
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:   &readOnly,
			IdempotentHint: &idempotent,
			OpenWorldHint:  &openWorld,
		},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			params := struct {
				HoursAgo int `json:"hours_ago"`
			}{HoursAgo: 1}
			if len(args) > 0 {
				if err := json.Unmarshal(args, &params); err != nil {
					return "", fmt.Errorf("invalid arguments: %w", err)
				}
			}
			return query.ActivityLog(ctx, params.HoursAgo)
		},
	}
}
