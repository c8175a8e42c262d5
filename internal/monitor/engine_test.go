// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pwplabs/pwp/internal/device"
)

var testStart = time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func reading(socket int, at time.Time, energy, max Energy, mhz ...float64) Reading {
	freqs := make([]device.CoreFreq, 0, len(mhz))
	for i, f := range mhz {
		freqs = append(freqs, device.CoreFreq{CPU: i, MHz: f})
	}
	return Reading{
		Socket:    socket,
		Timestamp: at,
		Energy:    energy,
		MaxEnergy: max,
		CoreFreqs: freqs,
	}
}

func TestCalculateEnergyDelta(t *testing.T) {
	tt := []struct {
		name      string
		current   Energy
		previous  Energy
		maxEnergy Energy
		expected  Energy
	}{
		{"no wrap", 300, 100, 1000, 200},
		{"equal readings", 100, 100, 1000, 0},
		{"single wraparound", 50, 900, 1000, 150},
		{"wrap at boundary", 0, 999, 1000, 1},
		{"zero modulus on wrap", 50, 900, 0, 0},
		{"large counters", 1_000_000_000_000, 999_999_999_000, 262_143_328_850_000, 1000},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result := calculateEnergyDelta(tc.current, tc.previous, tc.maxEnergy)
			assert.Equal(t, tc.expected, result)

			if tc.maxEnergy > 0 {
				assert.Less(t, result, tc.maxEnergy)
			}
		})
	}
}

func TestDeriveFirstReadingSkips(t *testing.T) {
	engine := NewEngine(testLogger(), 1.5)

	_, ok := engine.Derive(reading(0, testStart, 100, 1000), 4)
	assert.False(t, ok, "first observation of a socket must not produce a sample")

	// the first reading became the baseline
	sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 300, 1000), 4)
	assert.True(t, ok)
	assert.InDelta(t, 200.0, sample.Power.MicroWatts(), 1e-9)
}

func TestDeriveWraparound(t *testing.T) {
	// scenario: modulus 1000, 900 -> 50 over one second means 150 units
	engine := NewEngine(testLogger(), 1.5)

	_, ok := engine.Derive(reading(0, testStart, 900, 1000), 1)
	assert.False(t, ok)

	sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 50, 1000), 1)
	assert.True(t, ok)
	assert.InDelta(t, 150.0, sample.Power.MicroWatts(), 1e-9)
	assert.GreaterOrEqual(t, sample.Power.MicroWatts(), 0.0)
}

func TestDeriveLongerInterval(t *testing.T) {
	// 200 units over two seconds is half the rate of 200 units over one
	oneSec := NewEngine(testLogger(), 1.5)
	oneSec.Derive(reading(0, testStart, 100, 100000), 1)
	fast, ok := oneSec.Derive(reading(0, testStart.Add(time.Second), 300, 100000), 1)
	assert.True(t, ok)

	twoSec := NewEngine(testLogger(), 1.5)
	twoSec.Derive(reading(0, testStart, 100, 100000), 1)
	slow, ok := twoSec.Derive(reading(0, testStart.Add(2*time.Second), 300, 100000), 1)
	assert.True(t, ok)

	assert.InDelta(t, fast.Power.MicroWatts()/2, slow.Power.MicroWatts(), 1e-9)
}

func TestDeriveOutageSpanningDelta(t *testing.T) {
	// a failed tick leaves the previous state untouched; the next
	// successful delta spans the whole outage
	engine := NewEngine(testLogger(), 1.5)

	engine.Derive(reading(0, testStart, 100, 100000), 1)
	// ticks at +1s and +2s failed: no Derive calls

	sample, ok := engine.Derive(reading(0, testStart.Add(3*time.Second), 400, 100000), 1)
	assert.True(t, ok)
	assert.InDelta(t, 100.0, sample.Power.MicroWatts(), 1e-9, "300 µJ over 3s, not over the configured interval")
}

func TestDeriveNonPositiveTimeDelta(t *testing.T) {
	engine := NewEngine(testLogger(), 1.5)
	engine.Derive(reading(0, testStart, 100, 100000), 1)

	t.Run("duplicate timestamp skips", func(t *testing.T) {
		_, ok := engine.Derive(reading(0, testStart, 150, 100000), 1)
		assert.False(t, ok)
	})

	t.Run("clock going backwards skips", func(t *testing.T) {
		_, ok := engine.Derive(reading(0, testStart.Add(-time.Second), 180, 100000), 1)
		assert.False(t, ok)
	})

	t.Run("next tick recovers from the new baseline", func(t *testing.T) {
		// baseline is now the anomalous reading at -1s with energy 180
		sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 280, 100000), 1)
		assert.True(t, ok)
		assert.InDelta(t, 50.0, sample.Power.MicroWatts(), 1e-9)
	})
}

func TestDeriveUnitCount(t *testing.T) {
	t.Run("divides power by unit count", func(t *testing.T) {
		engine := NewEngine(testLogger(), 1.5)
		engine.Derive(reading(0, testStart, 0, 100000), 4)

		sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 400, 100000), 4)
		assert.True(t, ok)
		assert.InDelta(t, 100.0, sample.PowerPerUnit.MicroWatts(), 1e-9)
		assert.Equal(t, 4, sample.UnitCount)
	})

	t.Run("zero unit count fails closed", func(t *testing.T) {
		engine := NewEngine(testLogger(), 1.5)
		engine.Derive(reading(0, testStart, 0, 100000), 0)

		sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 400, 100000), 0)
		assert.True(t, ok)
		assert.Equal(t, Power(0), sample.PowerPerUnit)
	})
}

func TestDeriveFrequencyAndEfficiency(t *testing.T) {
	t.Run("average of current core frequencies", func(t *testing.T) {
		engine := NewEngine(testLogger(), 1.5)
		engine.Derive(reading(0, testStart, 0, 100000, 1000, 3000), 2)

		sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 2000, 100000, 2000, 4000), 2)
		assert.True(t, ok)
		// mean of the current reading, unweighted by the delta
		assert.InDelta(t, 3000.0, sample.AvgFreqMHz, 1e-9)
		// 2000 µW over 3000 MHz
		assert.InDelta(t, 2000.0/3000.0, sample.EfficiencyUWPerMHz, 1e-9)
	})

	t.Run("empty core list yields zero, not a division error", func(t *testing.T) {
		engine := NewEngine(testLogger(), 1.5)
		engine.Derive(reading(0, testStart, 0, 100000), 2)

		sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 2000, 100000), 2)
		assert.True(t, ok)
		assert.Equal(t, 0.0, sample.AvgFreqMHz)
		assert.Equal(t, 0.0, sample.EfficiencyUWPerMHz)
	})
}

func TestDeriveDailyCost(t *testing.T) {
	engine := NewEngine(testLogger(), 2.0)
	engine.Derive(reading(0, testStart, 0, Energy(1e15)), 1)

	// 50 J over one second = 50 W
	sample, ok := engine.Derive(reading(0, testStart.Add(time.Second), 50*device.Joule, Energy(1e15)), 1)
	assert.True(t, ok)
	assert.InDelta(t, 50.0, sample.Power.Watts(), 1e-9)
	assert.InDelta(t, 50.0*24/1000, sample.KWhPerDay, 1e-9)
	assert.InDelta(t, sample.KWhPerDay*2.0, sample.CostPerDay, 1e-9)
}

func TestDeriveIsPerSocket(t *testing.T) {
	engine := NewEngine(testLogger(), 1.5)

	_, ok := engine.Derive(reading(0, testStart, 100, 100000), 1)
	assert.False(t, ok)

	// a different socket starts from its own baseline
	_, ok = engine.Derive(reading(1, testStart, 500, 100000), 1)
	assert.False(t, ok)

	s0, ok := engine.Derive(reading(0, testStart.Add(time.Second), 200, 100000), 1)
	assert.True(t, ok)
	s1, ok := engine.Derive(reading(1, testStart.Add(time.Second), 800, 100000), 1)
	assert.True(t, ok)

	assert.InDelta(t, 100.0, s0.Power.MicroWatts(), 1e-9)
	assert.InDelta(t, 300.0, s1.Power.MicroWatts(), 1e-9)
}

func TestDeriveDeterminism(t *testing.T) {
	run := func() []Sample {
		engine := NewEngine(testLogger(), 1.5)
		var out []Sample
		readings := []Reading{
			reading(0, testStart, 900, 1000, 2400, 2600),
			reading(0, testStart.Add(time.Second), 50, 1000, 2500, 2700),
			reading(0, testStart.Add(2*time.Second), 250, 1000, 2000, 2200),
		}
		for _, r := range readings {
			if s, ok := engine.Derive(r, 2); ok {
				out = append(out, s)
			}
		}
		return out
	}

	assert.Equal(t, run(), run(), "identical reading sequences must derive identical samples")
}
