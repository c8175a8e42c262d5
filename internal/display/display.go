// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

// Package display renders derived samples to a terminal stream in one of
// three modes: a scrolling table, a fixed-height fullscreen redraw, or
// one JSON object per line.
package display

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pwplabs/pwp/internal/monitor"
)

// fixed column widths, units included
const (
	colSocket  = 6
	colPkg     = 9  // "  9999.99 W"
	colUnit    = 9  // "  12.345 W"
	colAvgMHz  = 9  // "  4200 MHz"
	colUWMHz   = 14 // " 1234.5 µW/MHz"
	colKWhDay  = 12 // "  0.123 kWh/d"
	colCostDay = 8  // "  1.12 /d"
)

type Opts struct {
	logger   *slog.Logger
	out      io.Writer
	logical  bool
	maxLines int
	noRoll   bool
}

// DefaultOpts returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger:   slog.Default().With("service", "display"),
		out:      os.Stdout,
		maxLines: 20,
	}
}

// OptionFn is a function that sets one or more options in Opts
type OptionFn func(*Opts)

// WithLogger sets the logger for the presenter
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger.With("service", "display")
	}
}

// WithOutput sets the output stream (stdout by default)
func WithOutput(out io.Writer) OptionFn {
	return func(o *Opts) {
		o.out = out
	}
}

// WithLogicalUnits labels the per-unit column as logical threads
func WithLogicalUnits(logical bool) OptionFn {
	return func(o *Opts) {
		o.logical = logical
	}
}

// WithMaxLines sets the roll threshold for the scrolling table
func WithMaxLines(n int) OptionFn {
	return func(o *Opts) {
		o.maxLines = n
	}
}

// WithNoRoll disables header reprinting; output scrolls indefinitely
func WithNoRoll(noRoll bool) OptionFn {
	return func(o *Opts) {
		o.noRoll = noRoll
	}
}

// unitLabel names the per-unit divisor in headers and JSON records
func unitLabel(logical bool) string {
	if logical {
		return "l-core"
	}
	return "p-core"
}

// cell right-justifies "<num> <unit>" to width runes
func cell(num, unit string, width int) string {
	return fmt.Sprintf("%*s", width, num+" "+unit)
}

func headerLine(logical bool) string {
	return fmt.Sprintf("%*s |%*s |%*s |%*s |%*s |%*s |%*s",
		colSocket, "Socket",
		colPkg, "Pkg W",
		colUnit, "W/"+unitLabel(logical),
		colAvgMHz, "Avg MHz",
		colUWMHz, "µW/MHz",
		colKWhDay, "kWh/d",
		colCostDay, "Cost/d")
}

func formatRow(s monitor.Sample) string {
	return fmt.Sprintf("%*d |%s |%s |%s |%s |%s |%s",
		colSocket, s.Socket,
		cell(fmt.Sprintf("%5.2f", s.Power.Watts()), "W", colPkg),
		cell(fmt.Sprintf("%5.3f", s.PowerPerUnit.Watts()), "W", colUnit),
		cell(fmt.Sprintf("%4.0f", s.AvgFreqMHz), "MHz", colAvgMHz),
		cell(fmt.Sprintf("%7.1f", s.EfficiencyUWPerMHz), "µW/MHz", colUWMHz),
		cell(fmt.Sprintf("%5.3f", s.KWhPerDay), "kWh/d", colKWhDay),
		cell(fmt.Sprintf("%5.2f", s.CostPerDay), "/d", colCostDay))
}
