// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"

	"github.com/pwplabs/pwp/internal/device"
)

const hoursPerDay = 24

// Engine converts successive counter readings into derived samples. It
// owns one previous Reading per socket; nothing else mutates that state.
type Engine struct {
	logger     *slog.Logger
	prev       map[int]Reading
	costPerKWh float64
}

func NewEngine(logger *slog.Logger, costPerKWh float64) *Engine {
	return &Engine{
		logger:     logger.With("service", "engine"),
		prev:       map[int]Reading{},
		costPerKWh: costPerKWh,
	}
}

// Derive computes a Sample from the reading and the stored previous
// reading for the same socket. ok is false when no rate can be computed:
// the first observation of a socket, or a non-positive time delta. In both
// cases the reading becomes the new baseline, so the next tick recovers.
func (e *Engine) Derive(r Reading, unitCount int) (Sample, bool) {
	prev, seen := e.prev[r.Socket]
	e.prev[r.Socket] = r

	if !seen {
		return Sample{}, false
	}

	dt := r.Timestamp.Sub(prev.Timestamp).Seconds()
	if dt <= 0 {
		e.logger.Debug("non-positive time delta; skipping sample",
			"socket", r.Socket, "dt", dt)
		return Sample{}, false
	}

	deltaEnergy := calculateEnergyDelta(r.Energy, prev.Energy, r.MaxEnergy)

	// µJ / s = µW
	power := Power(float64(deltaEnergy) / dt)

	var perUnit Power
	if unitCount > 0 {
		perUnit = power / Power(unitCount)
	}

	avgMHz := averageFreqMHz(r.CoreFreqs)
	efficiency := 0.0
	if avgMHz > 0 {
		efficiency = power.MicroWatts() / avgMHz
	}

	kwhPerDay := power.Watts() * hoursPerDay / 1000

	return Sample{
		Socket:    r.Socket,
		Timestamp: r.Timestamp,

		Power:        power,
		PowerPerUnit: perUnit,
		UnitCount:    unitCount,

		AvgFreqMHz:         avgMHz,
		EfficiencyUWPerMHz: efficiency,

		KWhPerDay:  kwhPerDay,
		CostPerDay: kwhPerDay * e.costPerKWh,
	}, true
}

// calculateEnergyDelta computes the energy consumed between two counter
// readings, assuming at most one wraparound. More than one wrap within a
// single interval is indistinguishable from a smaller delta and is a
// documented precision limit, not corrected heuristically.
func calculateEnergyDelta(current, previous, maxEnergy Energy) Energy {
	if current >= previous {
		return current - previous
	}

	// counter wraparound
	if maxEnergy > 0 {
		return (maxEnergy - previous) + current
	}

	return 0 // unable to calculate delta
}

func averageFreqMHz(freqs []device.CoreFreq) float64 {
	if len(freqs) == 0 {
		return 0
	}

	sum := 0.0
	for _, f := range freqs {
		sum += f.MHz
	}
	return sum / float64(len(freqs))
}
