// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"time"

	"github.com/pwplabs/pwp/internal/device"
)

type (
	Energy = device.Energy
	Power  = device.Power
)

// Reading is one raw observation of a socket: the energy counter, its
// wraparound modulus and the current per-core clock frequencies. The
// timestamp comes from the injected clock, never the wall clock.
type Reading struct {
	Socket    int
	Timestamp time.Time
	Energy    Energy
	MaxEnergy Energy
	CoreFreqs []device.CoreFreq
}

// Sample is one derived output record per socket per tick. Immutable once
// produced; consumed exactly once by the presenter.
type Sample struct {
	Socket    int
	Timestamp time.Time

	// Power is the socket package power over the last interval
	Power Power

	// PowerPerUnit is Power divided by UnitCount. Zero when UnitCount is 0.
	PowerPerUnit Power

	// UnitCount is the divisor used for PowerPerUnit: physical cores or
	// logical threads, fixed by configuration for the process run.
	UnitCount int

	// AvgFreqMHz is the unweighted mean of the current reading's per-core
	// frequencies. Zero when no core frequency could be read.
	AvgFreqMHz float64

	// EfficiencyUWPerMHz is package power in µW per MHz of average clock.
	// Zero when AvgFreqMHz is zero.
	EfficiencyUWPerMHz float64

	KWhPerDay  float64
	CostPerDay float64
}

// Presenter consumes each tick's derived samples in socket-ascending
// order. Present must only do bounded, constant-time formatting work; it
// runs on the sampling loop.
type Presenter interface {
	Init() error
	Present(samples []Sample) error
	Flush() error
}
