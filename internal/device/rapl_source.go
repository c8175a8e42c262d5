// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/procfs/sysfs"
)

// raplSource implements CounterSource on top of the Linux powercap
// (intel-rapl) interface, one package zone per socket.
type raplSource struct {
	logger    *slog.Logger
	sysfsPath string

	fs      sysfs.FS
	zones   map[int]sysfs.RaplZone
	sockets []int
	topo    *topology
}

var _ CounterSource = (*raplSource)(nil)

type RaplOptionFn func(*raplSource)

// WithSysfsPath overrides the sysfs mount point (default /sys)
func WithSysfsPath(path string) RaplOptionFn {
	return func(s *raplSource) {
		s.sysfsPath = path
	}
}

// WithRaplLogger sets the logger for the source
func WithRaplLogger(logger *slog.Logger) RaplOptionFn {
	return func(s *raplSource) {
		s.logger = logger.With("service", "rapl")
	}
}

// NewRaplSource creates a CounterSource backed by powercap sysfs
func NewRaplSource(opts ...RaplOptionFn) *raplSource {
	ret := &raplSource{
		logger:    slog.Default().With("service", "rapl"),
		sysfsPath: "/sys",
		zones:     map[int]sysfs.RaplZone{},
	}

	for _, opt := range opts {
		opt(ret)
	}

	return ret
}

func (s *raplSource) Name() string {
	return "rapl-powercap"
}

func (s *raplSource) Init() error {
	fs, err := sysfs.NewFS(s.sysfsPath)
	if err != nil {
		return fmt.Errorf("failed to open sysfs at %s: %w", s.sysfsPath, err)
	}
	s.fs = fs

	zones, err := sysfs.GetRaplZones(fs)
	if err != nil {
		return fmt.Errorf("failed to read rapl zones: %w", err)
	}

	for _, zone := range zones {
		socket, ok := packageSocket(zone)
		if !ok {
			continue
		}
		s.zones[socket] = zone
		s.sockets = append(s.sockets, socket)
	}
	sort.Ints(s.sockets)

	if len(s.sockets) == 0 {
		return fmt.Errorf("no RAPL package zones found under %s; is this an Intel CPU?", s.sysfsPath)
	}

	// verify the first zone is actually readable
	first := s.zones[s.sockets[0]]
	if _, err := first.GetEnergyMicrojoules(); err != nil {
		return fmt.Errorf("failed to read energy for socket %d: %w", s.sockets[0], err)
	}

	topo, err := scanTopology(fs)
	if err != nil {
		return fmt.Errorf("failed to scan CPU topology: %w", err)
	}
	s.topo = topo

	s.logger.Info("RAPL package zones discovered",
		"sockets", len(s.sockets),
		"path", first.Path)

	return nil
}

func (s *raplSource) Sockets() ([]int, error) {
	return s.sockets, nil
}

func (s *raplSource) ReadSocket(socket int) (SocketReading, error) {
	zone, ok := s.zones[socket]
	if !ok {
		return SocketReading{}, fmt.Errorf("unknown socket %d", socket)
	}

	uj, err := zone.GetEnergyMicrojoules()
	if err != nil {
		return SocketReading{}, fmt.Errorf("reading energy for socket %d: %w", socket, err)
	}

	return SocketReading{
		Socket:    socket,
		Energy:    Energy(uj),
		MaxEnergy: Energy(zone.MaxMicrojoules),
	}, nil
}

func (s *raplSource) CoreFrequencies(socket int) ([]CoreFreq, error) {
	cpus := s.topo.threads(socket)
	if len(cpus) == 0 {
		return nil, nil
	}

	stats, err := s.fs.SystemCpufreq()
	if err != nil {
		return nil, fmt.Errorf("reading cpufreq: %w", err)
	}

	freqs := make([]CoreFreq, 0, len(cpus))
	for _, stat := range stats {
		cpu, err := strconv.Atoi(stat.Name)
		if err != nil || !cpus[cpu] {
			continue
		}

		// scaling_cur_freq first, cpuinfo_cur_freq as fallback
		var khz uint64
		switch {
		case stat.ScalingCurrentFrequency != nil:
			khz = *stat.ScalingCurrentFrequency
		case stat.CpuinfoCurrentFrequency != nil:
			khz = *stat.CpuinfoCurrentFrequency
		}
		if khz == 0 {
			continue
		}

		freqs = append(freqs, CoreFreq{CPU: cpu, MHz: float64(khz) / 1000.0})
	}

	sort.Slice(freqs, func(i, j int) bool { return freqs[i].CPU < freqs[j].CPU })
	return freqs, nil
}

func (s *raplSource) UnitCount(socket int, logical bool) int {
	return s.topo.unitCount(socket, logical)
}

func (s *raplSource) Close() error {
	return nil
}

// packageSocket maps a RAPL zone to its socket id. Multi-socket kernels
// name package zones "package-N"; a bare "package" zone falls back to the
// zone index. Non-package zones (core, uncore, dram, psys) are excluded.
func packageSocket(zone sysfs.RaplZone) (int, bool) {
	if !strings.HasPrefix(zone.Name, "package") {
		return 0, false
	}

	suffix := strings.TrimPrefix(strings.TrimPrefix(zone.Name, "package"), "-")
	if suffix == "" {
		return zone.Index, true
	}

	socket, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return socket, true
}
