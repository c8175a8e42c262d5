// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"

	"github.com/pwplabs/pwp/internal/monitor"
)

// sampleRecord is the JSON-lines wire form of one derived sample
type sampleRecord struct {
	Timestamp  float64 `json:"timestamp"`
	Socket     int     `json:"socket"`
	PkgW       float64 `json:"pkg_w"`
	WPerCore   float64 `json:"w_per_core"`
	AvgMHz     float64 `json:"avg_mhz"`
	UWPerMHz   float64 `json:"uw_per_mhz"`
	KWhPerDay  float64 `json:"kwh_per_day"`
	CostPerDay float64 `json:"cost_per_day"`
	CoreMode   string  `json:"core_mode"`
}

// JSONLines writes one JSON object per sample per line. It retains
// nothing between ticks.
type JSONLines struct {
	logger *slog.Logger
	out    io.Writer
	enc    *json.Encoder

	coreMode string
}

var _ monitor.Presenter = (*JSONLines)(nil)

// NewJSONLines creates the JSON-lines presenter
func NewJSONLines(applyOpts ...OptionFn) *JSONLines {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	coreMode := "physical"
	if opts.logical {
		coreMode = "logical"
	}

	return &JSONLines{
		logger:   opts.logger,
		out:      opts.out,
		enc:      json.NewEncoder(opts.out),
		coreMode: coreMode,
	}
}

func (j *JSONLines) Init() error {
	return nil
}

func (j *JSONLines) Present(samples []monitor.Sample) error {
	for _, s := range samples {
		rec := sampleRecord{
			Timestamp:  float64(s.Timestamp.UnixNano()) / 1e9,
			Socket:     s.Socket,
			PkgW:       round(s.Power.Watts(), 3),
			WPerCore:   round(s.PowerPerUnit.Watts(), 4),
			AvgMHz:     math.Round(s.AvgFreqMHz),
			UWPerMHz:   round(s.EfficiencyUWPerMHz, 1),
			KWhPerDay:  round(s.KWhPerDay, 3),
			CostPerDay: round(s.CostPerDay, 3),
			CoreMode:   j.coreMode,
		}
		// Encode appends exactly one newline per record
		if err := j.enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONLines) Flush() error {
	return nil
}

func round(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
