// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"
	"time"

	"k8s.io/utils/clock"
)

type Opts struct {
	logger     *slog.Logger
	clock      clock.Clock
	interval   time.Duration
	logical    bool
	costPerKWh float64
}

// DefaultOpts returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger:     slog.Default(),
		clock:      clock.RealClock{},
		interval:   1 * time.Second,
		costPerKWh: 1.5,
	}
}

// OptionFn is a function that sets one or more options in Opts
type OptionFn func(*Opts)

// WithLogger sets the logger for the PowerMonitor
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger
	}
}

// WithClock sets the clock for the PowerMonitor
func WithClock(c clock.Clock) OptionFn {
	return func(o *Opts) {
		o.clock = c
	}
}

// WithInterval sets the sampling interval
func WithInterval(d time.Duration) OptionFn {
	return func(o *Opts) {
		o.interval = d
	}
}

// WithLogicalUnits divides power by logical threads instead of physical cores
func WithLogicalUnits(logical bool) OptionFn {
	return func(o *Opts) {
		o.logical = logical
	}
}

// WithCostPerKWh sets the electricity cost used for the cost/day column
func WithCostPerKWh(cost float64) OptionFn {
	return func(o *Opts) {
		o.costPerKWh = cost
	}
}
