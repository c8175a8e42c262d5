// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwplabs/pwp/internal/monitor"
)

func TestJSONLinesOneRecordPerSample(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONLines(WithOutput(&buf), WithLogger(testLogger()))
	require.NoError(t, j.Init())

	require.NoError(t, j.Present([]monitor.Sample{sample(0, 40), sample(1, 20)}))
	require.NoError(t, j.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, float64(0), rec["socket"])
	assert.Equal(t, 40.0, rec["pkg_w"])
	assert.Equal(t, 10.0, rec["w_per_core"])
	assert.Equal(t, 2400.0, rec["avg_mhz"])
	assert.Equal(t, "physical", rec["core_mode"])
	assert.InDelta(t, sample(0, 40).Timestamp.Unix(), rec["timestamp"].(float64), 1)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, float64(1), rec["socket"])
	assert.Equal(t, 20.0, rec["pkg_w"])
}

func TestJSONLinesRounding(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONLines(WithOutput(&buf), WithLogger(testLogger()))

	s := sample(0, 40)
	s.AvgFreqMHz = 2399.6
	s.EfficiencyUWPerMHz = 16666.6789
	s.KWhPerDay = 0.960049
	s.CostPerDay = 1.4400749
	require.NoError(t, j.Present([]monitor.Sample{s}))

	var rec sampleRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, 2400.0, rec.AvgMHz)
	assert.Equal(t, 16666.7, rec.UWPerMHz)
	assert.Equal(t, 0.96, rec.KWhPerDay)
	assert.Equal(t, 1.44, rec.CostPerDay)
}

func TestJSONLinesLogicalCoreMode(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONLines(WithOutput(&buf), WithLogicalUnits(true), WithLogger(testLogger()))

	require.NoError(t, j.Present([]monitor.Sample{sample(0, 40)}))

	var rec sampleRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "logical", rec.CoreMode)
}

func TestJSONLinesEmptyBatchWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONLines(WithOutput(&buf), WithLogger(testLogger()))

	require.NoError(t, j.Present(nil))
	assert.Zero(t, buf.Len())
}
