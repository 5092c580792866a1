package keepalive

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Target is a backend base URL probed with a plain GET.
type Target struct {
	Name string
	URL  string
}

// StatusSink records probe results, typically as the upstream_up gauge.
type StatusSink func(name string, up bool)

// Prober pings backends that sleep when idle so the first real request is not a cold start.
type Prober struct {
	targets  []Target
	interval time.Duration
	http     *resty.Client
	sink     StatusSink
}

func NewProber(targets []Target, interval time.Duration, sink StatusSink) *Prober {
	if sink == nil {
		sink = func(string, bool) {}
	}
	return &Prober{
		targets:  targets,
		interval: interval,
		http:     resty.New().SetTimeout(10 * time.Second),
		sink:     sink,
	}
}

// Run probes immediately and then every interval until ctx is done. A non-positive interval disables it.
func (p *Prober) Run(ctx context.Context) {
	if p.interval <= 0 || len(p.targets) == 0 {
		return
	}
	slog.Info("keepalive_started", "interval", p.interval.String(), "targets", len(p.targets))

	p.ProbeAll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProbeAll(ctx)
		}
	}
}

// ProbeAll probes every target concurrently and waits for all of them.
func (p *Prober) ProbeAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, target := range p.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			p.sink(t.Name, p.probe(ctx, t))
		}(target)
	}
	wg.Wait()
}

func (p *Prober) probe(ctx context.Context, t Target) bool {
	start := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		Get(strings.TrimRight(t.URL, "/") + "/")
	if err != nil {
		slog.Warn("keepalive_probe_failed", "upstream", t.Name, "error", err)
		return false
	}

	up := resp.StatusCode() < http.StatusInternalServerError
	slog.Info("keepalive_probe",
		"upstream", t.Name,
		"status", resp.StatusCode(),
		"up", up,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return up
}
