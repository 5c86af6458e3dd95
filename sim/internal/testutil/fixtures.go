// Package testutil provides shared test fixtures for the simulator packages:
// process builders and workload files.
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/viant/afs"

	"github.com/inference-sim/procsched/sim"
)

// Processes builds one process per burst with IDs 0, 1, 2, … and names "p0", "p1", ….
func Processes(bursts ...int32) []*sim.Process {
	procs := make([]*sim.Process, len(bursts))
	for i, b := range bursts {
		procs[i] = sim.NewProcess(int32(i), fmt.Sprintf("p%d", i), b, 0)
	}
	return procs
}

// RandomWorkload builds n processes with bursts in [0, maxBurst] and priorities in
// [0, 9], deterministic for a given seed.
func RandomWorkload(seed int64, n int, maxBurst int32) []*sim.Process {
	rng := rand.New(rand.NewSource(seed))
	procs := make([]*sim.Process, n)
	for i := range procs {
		p := sim.NewProcess(int32(i), fmt.Sprintf("proc-%d", i), rng.Int31n(maxBurst+1), int8(rng.Intn(10)))
		p.Status = byte(rng.Intn(2))
		p.BaseRegister = rng.Int31()
		p.LimitRegister = rng.Int63()
		p.Type = byte(rng.Intn(4))
		p.NumFiles = rng.Int31n(16)
		p.Checksum = rng.Int31()
		procs[i] = p
	}
	return procs
}

// InitialBursts maps process ID to initial burst.
func InitialBursts(procs []*sim.Process) map[int32]int64 {
	out := make(map[int32]int64, len(procs))
	for _, p := range procs {
		out[p.ID] = int64(p.InitialBurst)
	}
	return out
}

// WriteWorkload saves procs to a file in a fresh temp directory and returns its path.
func WriteWorkload(t *testing.T, procs []*sim.Process) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.bin")
	if err := sim.SaveProcesses(context.Background(), afs.New(), path, procs); err != nil {
		t.Fatalf("writing workload: %v", err)
	}
	return path
}
