// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"github.com/stretchr/testify/mock"
)

// MockCounterSource is a testify mock of CounterSource for tests
type MockCounterSource struct {
	mock.Mock
}

var _ CounterSource = (*MockCounterSource)(nil)

func (m *MockCounterSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCounterSource) Init() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCounterSource) Sockets() ([]int, error) {
	args := m.Called()
	if sockets, ok := args.Get(0).([]int); ok {
		return sockets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCounterSource) ReadSocket(socket int) (SocketReading, error) {
	args := m.Called(socket)
	return args.Get(0).(SocketReading), args.Error(1)
}

func (m *MockCounterSource) CoreFrequencies(socket int) ([]CoreFreq, error) {
	args := m.Called(socket)
	if freqs, ok := args.Get(0).([]CoreFreq); ok {
		return freqs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCounterSource) UnitCount(socket int, logical bool) int {
	args := m.Called(socket, logical)
	return args.Int(0)
}

func (m *MockCounterSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
