// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/pwplabs/pwp/internal/monitor"
)

// Table appends one row per sample. After maxLines data rows the screen is
// cleared and the header reprinted, followed by the retained rows, unless
// no-roll is set, in which case output scrolls indefinitely.
type Table struct {
	logger *slog.Logger
	out    io.Writer
	term   *termenv.Output

	logical  bool
	maxLines int
	noRoll   bool

	rows *rowBuffer
	// data rows printed since the last header
	printed int
}

var _ monitor.Presenter = (*Table)(nil)

// NewTable creates the scrolling table presenter
func NewTable(applyOpts ...OptionFn) *Table {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	return &Table{
		logger:   opts.logger,
		out:      opts.out,
		term:     termenv.NewOutput(opts.out),
		logical:  opts.logical,
		maxLines: opts.maxLines,
		noRoll:   opts.noRoll,
		rows:     newRowBuffer(opts.maxLines),
	}
}

func (t *Table) Init() error {
	return t.writeHeader()
}

func (t *Table) Present(samples []monitor.Sample) error {
	for _, s := range samples {
		row := formatRow(s)
		t.rows.Push(row)
		if _, err := fmt.Fprintln(t.out, row); err != nil {
			return err
		}
		t.printed++
	}

	if !t.noRoll && t.printed >= t.maxLines {
		return t.roll()
	}
	return nil
}

func (t *Table) Flush() error {
	return nil
}

// roll clears the screen and re-renders the header plus the retained rows
func (t *Table) roll() error {
	t.term.ClearScreen()
	if err := t.writeHeader(); err != nil {
		return err
	}
	for _, row := range t.rows.Rows() {
		if _, err := fmt.Fprintln(t.out, row); err != nil {
			return err
		}
	}
	t.printed = 0
	return nil
}

func (t *Table) writeHeader() error {
	header := headerLine(t.logical)
	if _, err := fmt.Fprintln(t.out, header); err != nil {
		return err
	}

	_, err := fmt.Fprintln(t.out, strings.Repeat("=", utf8.RuneCountInString(header)))
	return err
}
