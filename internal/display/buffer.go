// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package display

// rowBuffer is a fixed-capacity ring of rendered rows. When full, pushing
// a new row evicts the oldest. Capacity bounds display retention no matter
// how long the process runs.
type rowBuffer struct {
	rows []string
	head int
	size int
}

func newRowBuffer(capacity int) *rowBuffer {
	return &rowBuffer{
		rows: make([]string, capacity),
	}
}

func (b *rowBuffer) Push(row string) {
	if len(b.rows) == 0 {
		return
	}

	b.rows[(b.head+b.size)%len(b.rows)] = row
	if b.size < len(b.rows) {
		b.size++
		return
	}

	// full: the slot just written replaced the oldest row
	b.head = (b.head + 1) % len(b.rows)
}

func (b *rowBuffer) Len() int {
	return b.size
}

// Rows returns the retained rows, oldest first
func (b *rowBuffer) Rows() []string {
	out := make([]string, 0, b.size)
	for i := 0; i < b.size; i++ {
		out = append(out, b.rows[(b.head+i)%len(b.rows)])
	}
	return out
}
