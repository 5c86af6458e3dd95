package sim

import (
	"fmt"
	"time"
)

// DefaultQuantum is the slice length shared by the round-robin, SJF and priority policies.
const DefaultQuantum int32 = 2

// LockMode selects how the engine guards the ready queues.
type LockMode string

const (
	// LockGlobal guards every queue and the outstanding counter with one mutex,
	// so queue operations on different processors serialize against each other.
	LockGlobal LockMode = "global"
	// LockPerProcessor gives each queue its own mutex and keeps the counter atomic.
	LockPerProcessor LockMode = "per-processor"
)

// validLockModes maps accepted lock mode strings.
var validLockModes = map[LockMode]bool{
	LockGlobal:       true,
	LockPerProcessor: true,
	"":               true, // empty defaults to global
}

// IsValidLockMode returns true if the given string is a recognized lock mode.
func IsValidLockMode(mode string) bool {
	return validLockModes[LockMode(mode)]
}

// EngineConfig groups the timing and locking parameters of a run.
type EngineConfig struct {
	Quantum          int32         // slice length for preemptive and run-to-completion policies (> 0)
	SliceDelay       time.Duration // simulated work per executed slice (≥ 0)
	ProgressInterval time.Duration // controller progress log period; 0 disables
	LockMode         LockMode      // "global" (default) or "per-processor"
}

// DefaultEngineConfig returns the configuration used when nothing is overridden:
// quantum 2, 10ms per slice, progress every 100ms, one global lock.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Quantum:          DefaultQuantum,
		SliceDelay:       10 * time.Millisecond,
		ProgressInterval: 100 * time.Millisecond,
		LockMode:         LockGlobal,
	}
}

// Validate checks value ranges and the lock mode name.
func (c EngineConfig) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("%w: quantum must be positive, got %d", ErrConfig, c.Quantum)
	}
	if c.SliceDelay < 0 {
		return fmt.Errorf("%w: slice delay must be non-negative, got %v", ErrConfig, c.SliceDelay)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress interval must be non-negative, got %v", ErrConfig, c.ProgressInterval)
	}
	if !IsValidLockMode(string(c.LockMode)) {
		return fmt.Errorf("%w: unknown lock mode %q", ErrConfig, c.LockMode)
	}
	return nil
}

// ProcessorSpec is one (algorithm, load fraction) pair from the command line or config file.
type ProcessorSpec struct {
	Algorithm Algorithm
	Load      float64
}

// ProcessorInfo is a configured processor: stable 1-based index, policy, and its
// private ready queue.
type ProcessorInfo struct {
	Index  int
	Policy Policy
	Load   float64
	Queue  *ReadyQueue
}

// Name returns the processor label used in logs and trace lines.
func (p *ProcessorInfo) Name() string {
	return fmt.Sprintf("Processor_%d", p.Index)
}

// BuildProcessors partitions procs across specs and returns one ProcessorInfo per spec,
// indexed from 1 in the given order. Unknown algorithms and invalid loads return ErrConfig.
func BuildProcessors(specs []ProcessorSpec, procs []*Process) ([]*ProcessorInfo, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one processor is required", ErrConfig)
	}
	fractions := make([]float64, len(specs))
	policies := make([]Policy, len(specs))
	for i, s := range specs {
		policy, err := NewPolicy(s.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("processor %d: %w", i+1, err)
		}
		policies[i] = policy
		fractions[i] = s.Load
	}
	parts, err := Partition(procs, fractions)
	if err != nil {
		return nil, err
	}
	infos := make([]*ProcessorInfo, len(specs))
	for i := range specs {
		infos[i] = &ProcessorInfo{
			Index:  i + 1,
			Policy: policies[i],
			Load:   specs[i].Load,
			Queue:  NewReadyQueue(parts[i]),
		}
	}
	return infos, nil
}
