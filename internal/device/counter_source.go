// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package device

// SocketReading is one observation of a socket's energy counter.
type SocketReading struct {
	Socket int

	// Energy is the current counter value. The counter increases
	// monotonically and wraps to zero at MaxEnergy.
	Energy Energy

	// MaxEnergy is the counter wraparound modulus, fixed per socket.
	MaxEnergy Energy
}

// CoreFreq is one logical CPU's current clock reading.
type CoreFreq struct {
	CPU int
	MHz float64
}

// CounterSource exposes per-socket energy counters and per-core clock
// frequencies. Every read is independently fallible; callers do not retry.
// Reads carry no timeout, so a hanging sysfs read stalls the caller.
type CounterSource interface {
	Name() string

	Init() error

	// Sockets returns the discovered socket ids in ascending order.
	Sockets() ([]int, error)

	// ReadSocket returns the socket's current energy counter and modulus.
	ReadSocket(socket int) (SocketReading, error)

	// CoreFrequencies returns the current frequency of each logical CPU
	// attributed to the socket. CPUs whose frequency cannot be read are
	// silently excluded.
	CoreFrequencies(socket int) ([]CoreFreq, error)

	// UnitCount returns the socket's logical thread count when logical is
	// true, otherwise its physical core count. Returns 0 when the socket
	// topology is unknown.
	UnitCount(socket int, logical bool) int

	Close() error
}
