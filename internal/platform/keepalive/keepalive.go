// Copyright (c) 2026 TaskFlow. All rights reserved.

// Package keepalive implements the scheduled keep-alive ping.
//
// Free hosting tiers spin instances down after a few idle minutes; a periodic
// self-request keeps the API warm. The pinger is fully decoupled from request
// handling: it shares no mutable state, never retries, and only logs failures.
package keepalive

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// requestTimeout bounds a single ping so a hung endpoint cannot pile up
// goroutines across ticks.
const requestTimeout = 30 * time.Second

// Pinger periodically issues a GET request against a fixed URL.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// New constructs a Pinger. A non-positive interval falls back to the caller's
// configured default before reaching here; New does not second-guess it.
func New(url string, interval time.Duration, logger *slog.Logger) *Pinger {
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Run blocks, pinging on every tick until the context is cancelled.
//
// It is intended to be started on its own goroutine from main.
func (pinger *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(pinger.interval)
	defer ticker.Stop()

	pinger.logger.Info("keepalive_started",
		slog.String("url", pinger.url),
		slog.Duration("interval", pinger.interval),
	)

	for {
		select {
		case <-ticker.C:
			pinger.ping(ctx)
		case <-ctx.Done():
			pinger.logger.Info("keepalive_stopped")
			return
		}
	}
}

// ping issues a single request. Errors are logged and dropped; there is no retry.
func (pinger *Pinger) ping(ctx context.Context) {
	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, pinger.url, nil)
	if err != nil {
		pinger.logger.Error("keepalive_request_build_failed", slog.Any("error", err))
		return
	}

	response, err := pinger.client.Do(request)
	if err != nil {
		pinger.logger.Error("keepalive_ping_failed", slog.Any("error", err))
		return
	}
	defer func() { _ = response.Body.Close() }()

	pinger.logger.Info("keepalive_ping_ok", slog.Int("status", response.StatusCode))
}
