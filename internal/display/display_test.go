// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"log/slog"
	"os"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "  42.50 W", cell("42.50", "W", 9))
	assert.Equal(t, 14, utf8.RuneCountInString(cell("1234.5", "µW/MHz", 14)),
		"width is measured in runes, not bytes")
}

func TestFormatRowWidths(t *testing.T) {
	row := formatRow(sample(0, 42.5))
	header := headerLine(false)
	assert.Equal(t, utf8.RuneCountInString(header), utf8.RuneCountInString(row),
		"data rows line up with the header columns")
}

func TestUnitLabel(t *testing.T) {
	assert.Equal(t, "p-core", unitLabel(false))
	assert.Equal(t, "l-core", unitLabel(true))
}
