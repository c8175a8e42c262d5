// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
)

// NOTE: the fake source produces synthetic counters and is meant for tests
// and for demoing the display on machines without RAPL.

// fakeCounter is one socket's synthetic energy counter
type fakeCounter struct {
	mu        sync.Mutex
	energy    Energy
	maxEnergy Energy

	increment    Energy
	randomFactor float64
}

// read advances the counter and returns the new value, wrapping at maxEnergy
func (c *fakeCounter) read() Energy {
	c.mu.Lock()
	defer c.mu.Unlock()

	jitter := Energy(rand.Float64() * float64(c.increment) * c.randomFactor)
	c.energy = (c.energy + c.increment + jitter) % c.maxEnergy

	return c.energy
}

type fakeSource struct {
	logger   *slog.Logger
	counters map[int]*fakeCounter
	sockets  []int

	physicalPerSocket int
	logicalPerSocket  int
	baseMHz           float64
}

var _ CounterSource = (*fakeSource)(nil)

// FakeOptFn is a functional option for configuring the fake source
type FakeOptFn func(*fakeSource)

// WithFakeSockets sets the number of synthetic sockets
func WithFakeSockets(n int) FakeOptFn {
	return func(s *fakeSource) {
		s.counters = map[int]*fakeCounter{}
		s.sockets = s.sockets[:0]
		for i := 0; i < n; i++ {
			s.sockets = append(s.sockets, i)
			s.counters[i] = newFakeCounter()
		}
	}
}

// WithFakeMaxEnergy sets the counter modulus for every socket
func WithFakeMaxEnergy(e Energy) FakeOptFn {
	return func(s *fakeSource) {
		for _, c := range s.counters {
			c.maxEnergy = e
		}
	}
}

// WithFakeIncrement sets the per-read counter increment for every socket
func WithFakeIncrement(e Energy) FakeOptFn {
	return func(s *fakeSource) {
		for _, c := range s.counters {
			c.increment = e
		}
	}
}

// WithFakeJitter adds a random component of up to factor*increment per read
func WithFakeJitter(factor float64) FakeOptFn {
	return func(s *fakeSource) {
		for _, c := range s.counters {
			c.randomFactor = factor
		}
	}
}

// WithFakeLogger sets the logger for the fake source
func WithFakeLogger(l *slog.Logger) FakeOptFn {
	return func(s *fakeSource) {
		s.logger = l.With("service", "fake-source")
	}
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		maxEnergy: 262_143_328_850 * MicroJoule, // typical max_energy_range_uj
		increment: 15 * Joule,
	}
}

// NewFakeSource creates a CounterSource with synthetic counters
func NewFakeSource(opts ...FakeOptFn) CounterSource {
	ret := &fakeSource{
		logger:            slog.Default().With("service", "fake-source"),
		counters:          map[int]*fakeCounter{0: newFakeCounter()},
		sockets:           []int{0},
		physicalPerSocket: 4,
		logicalPerSocket:  8,
		baseMHz:           2400,
	}

	for _, opt := range opts {
		opt(ret)
	}
	sort.Ints(ret.sockets)

	return ret
}

func (s *fakeSource) Name() string {
	return "fake"
}

func (s *fakeSource) Init() error {
	s.logger.Info("Using synthetic counters", "sockets", len(s.sockets))
	return nil
}

func (s *fakeSource) Sockets() ([]int, error) {
	return s.sockets, nil
}

func (s *fakeSource) ReadSocket(socket int) (SocketReading, error) {
	c, ok := s.counters[socket]
	if !ok {
		return SocketReading{}, fmt.Errorf("unknown socket %d", socket)
	}

	return SocketReading{
		Socket:    socket,
		Energy:    c.read(),
		MaxEnergy: c.maxEnergy,
	}, nil
}

func (s *fakeSource) CoreFrequencies(socket int) ([]CoreFreq, error) {
	if _, ok := s.counters[socket]; !ok {
		return nil, fmt.Errorf("unknown socket %d", socket)
	}

	freqs := make([]CoreFreq, 0, s.logicalPerSocket)
	for i := 0; i < s.logicalPerSocket; i++ {
		freqs = append(freqs, CoreFreq{
			CPU: socket*s.logicalPerSocket + i,
			MHz: s.baseMHz + rand.Float64()*400,
		})
	}
	return freqs, nil
}

func (s *fakeSource) UnitCount(socket int, logical bool) int {
	if _, ok := s.counters[socket]; !ok {
		return 0
	}
	if logical {
		return s.logicalPerSocket
	}
	return s.physicalPerSocket
}

func (s *fakeSource) Close() error {
	return nil
}
