// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/muesli/termenv"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pwplabs/pwp/internal/monitor"
)

// Fullscreen keeps one row slot per socket and rewrites the rows in place
// every tick, so display height stays constant no matter how long the
// process runs.
type Fullscreen struct {
	logger  *slog.Logger
	out     io.Writer
	term    *termenv.Output
	logical bool

	// latest sample per socket, rendered in ascending socket order
	latest map[int]monitor.Sample
	order  []int

	// lines written by the previous render
	height int
}

var _ monitor.Presenter = (*Fullscreen)(nil)

// NewFullscreen creates the in-place redraw presenter
func NewFullscreen(applyOpts ...OptionFn) *Fullscreen {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &Fullscreen{
		logger:  opts.logger,
		out:     opts.out,
		term:    termenv.NewOutput(opts.out),
		logical: opts.logical,
		latest:  map[int]monitor.Sample{},
	}
}

func (f *Fullscreen) Init() error {
	f.term.ClearScreen()
	f.term.HideCursor()
	return nil
}

func (f *Fullscreen) Present(samples []monitor.Sample) error {
	for _, s := range samples {
		if _, ok := f.latest[s.Socket]; !ok {
			f.order = append(f.order, s.Socket)
			sort.Ints(f.order)
		}
		f.latest[s.Socket] = s
	}

	return f.render()
}

func (f *Fullscreen) Flush() error {
	f.term.ShowCursor()
	return nil
}

func (f *Fullscreen) render() error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header([]string{"Socket", "Pkg W", "W/" + unitLabel(f.logical), "Avg MHz", "µW/MHz", "kWh/d", "Cost/d"})

	rows := make([][]string, 0, len(f.order))
	for _, socket := range f.order {
		s := f.latest[socket]
		rows = append(rows, []string{
			fmt.Sprintf("%d", socket),
			fmt.Sprintf("%.2f", s.Power.Watts()),
			fmt.Sprintf("%.3f", s.PowerPerUnit.Watts()),
			fmt.Sprintf("%.0f", s.AvgFreqMHz),
			fmt.Sprintf("%.1f", s.EfficiencyUWPerMHz),
			fmt.Sprintf("%.3f", s.KWhPerDay),
			fmt.Sprintf("%.2f", s.CostPerDay),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// overwrite the previous render in place
	if f.height > 0 {
		f.term.CursorUp(f.height)
	}

	out := buf.String()
	if _, err := io.WriteString(f.out, out); err != nil {
		return err
	}
	f.height = strings.Count(out, "\n")

	return nil
}
