// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"strconv"

	"github.com/prometheus/procfs/sysfs"
)

// topology maps sockets to their logical CPUs and physical cores, scanned
// once at startup from /sys/devices/system/cpu/cpu*/topology.
type topology struct {
	// socket -> set of logical CPU ids
	logicalCPUs map[int]map[int]bool
	// socket -> set of physical core ids (core_id is unique within a socket)
	physicalCores map[int]map[string]bool
}

func scanTopology(fs sysfs.FS) (*topology, error) {
	cpus, err := fs.CPUs()
	if err != nil {
		return nil, err
	}

	t := &topology{
		logicalCPUs:   map[int]map[int]bool{},
		physicalCores: map[int]map[string]bool{},
	}

	for _, cpu := range cpus {
		topo, err := cpu.Topology()
		if err != nil {
			// topology not exposed for this CPU
			continue
		}

		socket, err := strconv.Atoi(topo.PhysicalPackageID)
		if err != nil {
			continue
		}
		num, err := strconv.Atoi(cpu.Number())
		if err != nil {
			continue
		}

		if t.logicalCPUs[socket] == nil {
			t.logicalCPUs[socket] = map[int]bool{}
			t.physicalCores[socket] = map[string]bool{}
		}
		t.logicalCPUs[socket][num] = true
		t.physicalCores[socket][topo.CoreID] = true
	}

	return t, nil
}

// threads returns the socket's logical CPU set
func (t *topology) threads(socket int) map[int]bool {
	return t.logicalCPUs[socket]
}

func (t *topology) unitCount(socket int, logical bool) int {
	if logical {
		return len(t.logicalCPUs[socket])
	}
	return len(t.physicalCores[socket])
}
