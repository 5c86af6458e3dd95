package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/inference-sim/procsched/sim"
	"github.com/inference-sim/procsched/sim/internal/testutil"
	"github.com/inference-sim/procsched/sim/trace"
)

// fastConfig runs without slice delay so tests only exercise the logical sequencing.
func fastConfig(mode sim.LockMode) sim.EngineConfig {
	cfg := sim.DefaultEngineConfig()
	cfg.SliceDelay = 0
	cfg.ProgressInterval = 0
	cfg.LockMode = mode
	return cfg
}

func runEngine(t *testing.T, cfg sim.EngineConfig, specs []sim.ProcessorSpec, procs []*sim.Process) (*trace.ExecutionTrace, *Controller) {
	t.Helper()
	processors, err := sim.BuildProcessors(specs, procs)
	require.NoError(t, err)
	et := trace.NewExecutionTrace()
	c, err := NewController(cfg, processors, et)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Run(ctx))
	return et, c
}

type sliceStep struct {
	pid       int32
	executed  int32
	remaining int32
}

func steps(records []trace.SliceRecord) []sliceStep {
	out := make([]sliceStep, len(records))
	for i, r := range records {
		out[i] = sliceStep{r.ProcessID, r.Executed, r.Remaining}
	}
	return out
}

func TestController_SingleFCFS_RunsFullBurstsInQueueOrder(t *testing.T) {
	// GIVEN one FCFS processor with A(burst=5), B(burst=3)
	procs := []*sim.Process{sim.NewProcess(1, "A", 5, 0), sim.NewProcess(2, "B", 3, 0)}

	// WHEN the engine runs
	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 1}}, procs)

	// THEN A runs 5 then B runs 3, each in one slice, and the counter goes 2→1→0
	assert.Equal(t, []sliceStep{{1, 5, 0}, {2, 3, 0}}, steps(et.Slices()))
	completions := et.Completions()
	require.Len(t, completions, 2)
	assert.Equal(t, int32(1), completions[0].ProcessID)
	assert.Equal(t, int64(1), completions[0].Outstanding)
	assert.Equal(t, int32(2), completions[1].ProcessID)
	assert.Equal(t, int64(0), completions[1].Outstanding)
}

func TestController_SingleRoundRobin_SlicesByQuantum(t *testing.T) {
	// GIVEN one RR processor with C(burst=5) and quantum 2
	procs := []*sim.Process{sim.NewProcess(3, "C", 5, 0)}

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 1}}, procs)

	// THEN C runs 2, 2, 1 leaving 3, 1, 0
	assert.Equal(t, []sliceStep{{3, 2, 3}, {3, 2, 1}, {3, 1, 0}}, steps(et.Slices()))
}

func TestController_RoundRobin_InterleavesByTailRequeue(t *testing.T) {
	// GIVEN one RR processor with C(5), D(3), E(2)
	procs := []*sim.Process{sim.NewProcess(3, "C", 5, 0), sim.NewProcess(4, "D", 3, 0), sim.NewProcess(5, "E", 2, 0)}

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 1}}, procs)

	// THEN preempted processes rejoin at the tail
	want := []sliceStep{
		{3, 2, 3}, {4, 2, 1}, {5, 2, 0},
		{3, 2, 1}, {4, 1, 0},
		{3, 1, 0},
	}
	assert.Equal(t, want, steps(et.Slices()))
}

func TestController_RoundRobin_SliceCountIsCeilBurstOverQuantum(t *testing.T) {
	tests := []struct {
		burst   int32
		quantum int32
	}{
		{5, 2}, {6, 2}, {1, 2}, {7, 3}, {9, 3}, {4, 5},
	}
	for _, tt := range tests {
		cfg := fastConfig(sim.LockGlobal)
		cfg.Quantum = tt.quantum
		et, _ := runEngine(t, cfg, []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 1}}, []*sim.Process{sim.NewProcess(1, "x", tt.burst, 0)})

		slices := et.Slices()
		wantCount := int((tt.burst + tt.quantum - 1) / tt.quantum)
		require.Len(t, slices, wantCount, "burst=%d quantum=%d", tt.burst, tt.quantum)
		wantLast := tt.burst % tt.quantum
		if wantLast == 0 {
			wantLast = tt.quantum
		}
		assert.Equal(t, wantLast, slices[len(slices)-1].Executed, "burst=%d quantum=%d", tt.burst, tt.quantum)
	}
}

func TestController_SJF_SelectsShortestAndRunsToCompletion(t *testing.T) {
	// GIVEN one SJF processor with bursts [5, 1, 3]
	procs := testutil.Processes(5, 1, 3)

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmSJF, Load: 1}}, procs)

	// THEN p1 runs first, then p2 in slices 2+1, then p0 in slices 2+2+1, never interleaved
	want := []sliceStep{
		{1, 1, 0},
		{2, 2, 1}, {2, 1, 0},
		{0, 2, 3}, {0, 2, 1}, {0, 1, 0},
	}
	assert.Equal(t, want, steps(et.Slices()))
}

func TestController_Priority_SelectsHighestValueFirst(t *testing.T) {
	// GIVEN one priority processor with priorities [1, 5, 3]
	procs := []*sim.Process{sim.NewProcess(10, "low", 3, 1), sim.NewProcess(11, "high", 2, 5), sim.NewProcess(12, "mid", 1, 3)}

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmPriority, Load: 1}}, procs)

	// THEN high, mid, low run to completion in that order and carry their priority
	slices := et.Slices()
	assert.Equal(t, []sliceStep{{11, 2, 0}, {12, 1, 0}, {10, 2, 1}, {10, 1, 0}}, steps(slices))
	for _, s := range slices {
		pri, err := s.Priority.Get()
		require.NoError(t, err)
		assert.Contains(t, []int{1, 3, 5}, pri)
	}
	assert.Equal(t, 5, slices[0].Priority.OrElse(-1))
}

func TestController_NonPriorityPolicies_OmitPriority(t *testing.T) {
	for _, alg := range []sim.Algorithm{sim.AlgorithmFCFS, sim.AlgorithmRoundRobin, sim.AlgorithmSJF} {
		et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: alg, Load: 1}}, []*sim.Process{sim.NewProcess(1, "x", 3, 7)})
		for _, s := range et.Slices() {
			assert.False(t, s.Priority.Present(), "%v must not report a priority", alg)
			assert.Equal(t, alg.String(), s.Policy)
		}
	}
}

// reselections returns, for each processor, the pid chosen at each selection point.
func reselections(slices []trace.SliceRecord) []int32 {
	var out []int32
	var last int32 = -1
	for _, s := range slices {
		if s.ProcessID != last {
			out = append(out, s.ProcessID)
			last = s.ProcessID
		}
	}
	return out
}

func TestController_SJFAndPriority_ChooseExtremumAtEverySelection(t *testing.T) {
	// GIVEN two processors over a random workload: SJF and Priority
	procs := testutil.RandomWorkload(7, 40, 9)
	bursts := testutil.InitialBursts(procs)
	priorities := make(map[int32]int8, len(procs))
	for _, p := range procs {
		priorities[p.ID] = p.Priority
	}
	specs := []sim.ProcessorSpec{{Algorithm: sim.AlgorithmSJF, Load: 0.5}, {Algorithm: sim.AlgorithmPriority, Load: 0.5}}
	processors, err := sim.BuildProcessors(specs, procs)
	require.NoError(t, err)
	queued := map[int]map[int32]bool{}
	for _, p := range processors {
		queued[p.Index] = map[int32]bool{}
		for _, proc := range p.Queue.Items() {
			queued[p.Index][proc.ID] = true
		}
	}

	et := trace.NewExecutionTrace()
	c, err := NewController(fastConfig(sim.LockPerProcessor), processors, et)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	// THEN every selection picks the min burst (SJF) / max priority (Priority) among those still queued
	for _, pid := range reselections(et.SlicesFor(1)) {
		for other := range queued[1] {
			assert.LessOrEqual(t, bursts[pid], bursts[other], "SJF picked %d over %d", pid, other)
		}
		delete(queued[1], pid)
	}
	for _, pid := range reselections(et.SlicesFor(2)) {
		for other := range queued[2] {
			assert.GreaterOrEqual(t, priorities[pid], priorities[other], "Priority picked %d over %d", pid, other)
		}
		delete(queued[2], pid)
	}
	assert.Empty(t, queued[1])
	assert.Empty(t, queued[2])
}

func TestController_MixedPolicies_ConserveWorkInBothLockModes(t *testing.T) {
	for _, mode := range []sim.LockMode{sim.LockGlobal, sim.LockPerProcessor} {
		t.Run(string(mode), func(t *testing.T) {
			// GIVEN four processors, one per policy, over 103 random processes
			procs := testutil.RandomWorkload(42, 103, 12)
			want := testutil.InitialBursts(procs)
			specs := []sim.ProcessorSpec{
				{Algorithm: sim.AlgorithmFCFS, Load: 0.1},
				{Algorithm: sim.AlgorithmRoundRobin, Load: 0.4},
				{Algorithm: sim.AlgorithmSJF, Load: 0.25},
				{Algorithm: sim.AlgorithmPriority, Load: 0.25},
			}

			// WHEN the engine runs
			et, c := runEngine(t, fastConfig(mode), specs, procs)

			// THEN each process executed exactly its initial burst and finished at zero
			summary := trace.Summarize(et)
			assert.Equal(t, len(procs), summary.CompletedCount)
			for pid, burst := range want {
				assert.Equal(t, burst, summary.ExecutedByProcess[pid], "pid %d", pid)
			}
			for _, p := range procs {
				assert.Equal(t, int32(0), p.RemainingBurst)
			}

			// AND the counter took every value from N-1 down to 0 exactly once
			values := make([]int, 0, len(procs))
			for _, comp := range et.Completions() {
				values = append(values, int(comp.Outstanding))
			}
			sort.Ints(values)
			for i, v := range values {
				assert.Equal(t, i, v)
			}

			m := c.Metrics()
			assert.Equal(t, len(procs), m.CompletedProcesses)
			assert.Equal(t, summary.TotalSlices, m.TotalSlices)
		})
	}
}

func TestController_FCFS_CompletesInPartitionOrder(t *testing.T) {
	// GIVEN two FCFS processors sharing 10 processes evenly
	procs := testutil.Processes(3, 1, 4, 1, 5, 9, 2, 6, 5, 3)

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 0.5}, {Algorithm: sim.AlgorithmFCFS, Load: 0.5}}, procs)

	// THEN each processor retires its positional share in input order
	order := trace.Summarize(et).CompletionOrder
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, order[1])
	assert.Equal(t, []int32{5, 6, 7, 8, 9}, order[2])
}

func TestController_EmptyWorkload_TerminatesImmediately(t *testing.T) {
	et, c := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 1}, {Algorithm: sim.AlgorithmSJF, Load: 0}}, nil)

	assert.Empty(t, et.Slices())
	assert.Equal(t, 0, c.Metrics().CompletedProcesses)
}

func TestController_StarvedProcessor_StillStopsOnTermination(t *testing.T) {
	// GIVEN two processors where the second receives no work (load 0)
	var mu sync.Mutex
	stopped := map[int]bool{}
	processors, err := sim.BuildProcessors([]sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 1}, {Algorithm: sim.AlgorithmPriority, Load: 0}}, testutil.Processes(2, 2))
	require.NoError(t, err)
	c, err := NewController(fastConfig(sim.LockGlobal), processors, nil)
	require.NoError(t, err)
	c.onState = func(processor int, s WorkerState) {
		if s == StateStopped {
			mu.Lock()
			stopped[processor] = true
			mu.Unlock()
		}
	}

	// WHEN the run completes
	require.NoError(t, c.Run(context.Background()))

	// THEN both workers, including the idle one, reached Stopped before Run returned
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, stopped[1])
	assert.True(t, stopped[2])
}

func TestController_NoSlicesAfterRunReturns(t *testing.T) {
	cfg := fastConfig(sim.LockPerProcessor)
	cfg.SliceDelay = time.Millisecond
	et, _ := runEngine(t, cfg, []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 0.5}, {Algorithm: sim.AlgorithmSJF, Load: 0.5}}, testutil.Processes(3, 4, 2, 1))

	before := len(et.Slices())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, len(et.Slices()))
}

func TestController_ContextCancelled_AbortsRun(t *testing.T) {
	// GIVEN a slow run
	cfg := fastConfig(sim.LockGlobal)
	cfg.SliceDelay = time.Hour
	processors, err := sim.BuildProcessors([]sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 1}}, testutil.Processes(10))
	require.NoError(t, err)
	c, err := NewController(cfg, processors, nil)
	require.NoError(t, err)

	// WHEN the caller cancels
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.Run(ctx)

	// THEN Run returns the context error with the process unfinished
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, c.Metrics().CompletedProcesses)
}

func TestController_LoadedWorkload_RunsToCompletion(t *testing.T) {
	// GIVEN a workload round-tripped through a file
	path := testutil.WriteWorkload(t, testutil.RandomWorkload(3, 20, 6))
	procs, err := sim.LoadProcesses(context.Background(), afs.New(), path)
	require.NoError(t, err)

	et, _ := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmRoundRobin, Load: 0.5}, {Algorithm: sim.AlgorithmPriority, Load: 0.5}}, procs)

	assert.Equal(t, 20, trace.Summarize(et).CompletedCount)
}

func TestNewController_InvalidInput_ReturnsConfigError(t *testing.T) {
	good, err := sim.BuildProcessors([]sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 1}}, nil)
	require.NoError(t, err)

	badQuantum := fastConfig(sim.LockGlobal)
	badQuantum.Quantum = 0
	badMode := fastConfig(sim.LockGlobal)
	badMode.LockMode = "striped"

	tests := []struct {
		name       string
		cfg        sim.EngineConfig
		processors []*sim.ProcessorInfo
	}{
		{"no processors", fastConfig(sim.LockGlobal), nil},
		{"nil policy", fastConfig(sim.LockGlobal), []*sim.ProcessorInfo{{Index: 1, Queue: sim.NewReadyQueue(nil)}}},
		{"zero quantum", badQuantum, good},
		{"unknown lock mode", badMode, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewController(tt.cfg, tt.processors, nil)
			assert.ErrorIs(t, err, sim.ErrConfig)
		})
	}
}

func TestController_RunTwice_Panics(t *testing.T) {
	_, c := runEngine(t, fastConfig(sim.LockGlobal), []sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 1}}, testutil.Processes(1))
	assert.Panics(t, func() { _ = c.Run(context.Background()) })
}

func TestController_MetricsBeforeRun_Panics(t *testing.T) {
	processors, err := sim.BuildProcessors([]sim.ProcessorSpec{{Algorithm: sim.AlgorithmFCFS, Load: 1}}, nil)
	require.NoError(t, err)
	c, err := NewController(fastConfig(sim.LockGlobal), processors, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, c.RunID())
	assert.Panics(t, func() { c.Metrics() })
}
