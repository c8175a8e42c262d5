// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"k8s.io/utils/clock"

	"github.com/pwplabs/pwp/internal/device"
	"github.com/pwplabs/pwp/internal/service"
)

// PowerMonitor drives the sampling cadence: read every socket, derive
// samples, hand them to the presenter, then sleep for the remainder of
// the interval. A single goroutine owns all mutable state.
type PowerMonitor struct {
	logger    *slog.Logger
	source    device.CounterSource
	presenter Presenter
	engine    *Engine

	clock    clock.Clock
	interval time.Duration
	logical  bool

	sockets []int
}

var (
	_ service.Initializer = (*PowerMonitor)(nil)
	_ service.Runner      = (*PowerMonitor)(nil)
	_ service.Shutdowner  = (*PowerMonitor)(nil)
)

// NewPowerMonitor creates a new PowerMonitor instance
func NewPowerMonitor(source device.CounterSource, presenter Presenter, applyOpts ...OptionFn) *PowerMonitor {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &PowerMonitor{
		logger:    opts.logger.With("service", "monitor"),
		source:    source,
		presenter: presenter,
		engine:    NewEngine(opts.logger, opts.costPerKWh),
		clock:     opts.clock,
		interval:  opts.interval,
		logical:   opts.logical,
	}
}

func (pm *PowerMonitor) Name() string {
	return "monitor"
}

func (pm *PowerMonitor) Init() error {
	if err := pm.source.Init(); err != nil {
		return fmt.Errorf("counter source initialization failed: %w", err)
	}

	sockets, err := pm.source.Sockets()
	if err != nil {
		return fmt.Errorf("socket discovery failed: %w", err)
	}
	if len(sockets) == 0 {
		return fmt.Errorf("counter source %s discovered no sockets", pm.source.Name())
	}

	// fixed ascending order keeps row order reproducible across runs
	pm.sockets = append([]int{}, sockets...)
	sort.Ints(pm.sockets)

	return pm.presenter.Init()
}

func (pm *PowerMonitor) Run(ctx context.Context) error {
	pm.logger.Info("Sampling started",
		"interval", pm.interval,
		"sockets", len(pm.sockets),
		"source", pm.source.Name())

	for {
		tickStart := pm.clock.Now()
		pm.tick(tickStart)

		if !pm.sleep(ctx, tickStart) {
			pm.logger.Info("Sampling stopped")
			return nil
		}
	}
}

func (pm *PowerMonitor) Shutdown() error {
	if err := pm.presenter.Flush(); err != nil {
		pm.logger.Warn("presenter flush failed", "error", err)
	}
	return pm.source.Close()
}

// tick reads every socket once, in ascending order, and forwards the
// tick's derived samples to the presenter. A failed socket read is
// contained to that socket: its previous state stays untouched, so the
// next successful delta spans the outage.
func (pm *PowerMonitor) tick(now time.Time) {
	samples := make([]Sample, 0, len(pm.sockets))

	for _, socket := range pm.sockets {
		reading, err := pm.read(socket, now)
		if err != nil {
			pm.logger.Debug("socket read failed; skipped this tick",
				"socket", socket, "error", err)
			continue
		}

		unitCount := pm.source.UnitCount(socket, pm.logical)
		if sample, ok := pm.engine.Derive(reading, unitCount); ok {
			samples = append(samples, sample)
		}
	}

	if len(samples) == 0 {
		return
	}

	if err := pm.presenter.Present(samples); err != nil {
		pm.logger.Warn("presenting samples failed", "error", err)
	}
}

func (pm *PowerMonitor) read(socket int, now time.Time) (Reading, error) {
	sr, err := pm.source.ReadSocket(socket)
	if err != nil {
		return Reading{}, err
	}

	// partial failure: a socket with unreadable frequencies still yields a
	// power sample, with a zero average clock
	freqs, err := pm.source.CoreFrequencies(socket)
	if err != nil {
		pm.logger.Debug("core frequency read failed",
			"socket", socket, "error", err)
		freqs = nil
	}

	return Reading{
		Socket:    socket,
		Timestamp: now,
		Energy:    sr.Energy,
		MaxEnergy: sr.MaxEnergy,
		CoreFreqs: freqs,
	}, nil
}

// sleep waits for the rest of the interval, net of the time the tick
// already consumed, so cadence stays close to the configured interval
// regardless of processing cost. Returns false when ctx was cancelled;
// cancellation is observed during the sleep, not once per interval.
func (pm *PowerMonitor) sleep(ctx context.Context, tickStart time.Time) bool {
	wait := pm.interval - pm.clock.Since(tickStart)
	if wait <= 0 {
		// processing overran the interval; only check for cancellation
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := pm.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C():
		return true
	case <-ctx.Done():
		return false
	}
}
