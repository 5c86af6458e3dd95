package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Algorithm identifies a scheduling policy by its command-line code.
type Algorithm int

const (
	AlgorithmFCFS       Algorithm = 0
	AlgorithmRoundRobin Algorithm = 1
	AlgorithmSJF        Algorithm = 2
	AlgorithmPriority   Algorithm = 3
)

// algorithmNames holds the trace label and accepted name of every algorithm.
var algorithmNames = map[Algorithm]struct{ label, name string }{
	AlgorithmFCFS:       {"FCFS", "fcfs"},
	AlgorithmRoundRobin: {"RR", "rr"},
	AlgorithmSJF:        {"SJF", "sjf"},
	AlgorithmPriority:   {"Priority", "priority"},
}

// IsValid reports whether a is one of the four known algorithms.
func (a Algorithm) IsValid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// String returns the label used in trace lines ("FCFS", "RR", "SJF", "Priority").
func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n.label
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm accepts a numeric code (0-3) or a case-insensitive name
// ("fcfs", "rr", "round-robin", "sjf", "priority").
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		a := Algorithm(code)
		if !a.IsValid() {
			return 0, fmt.Errorf("%w: unknown algorithm code %d", ErrConfig, code)
		}
		return a, nil
	}
	lower := strings.ToLower(s)
	if lower == "round-robin" {
		return AlgorithmRoundRobin, nil
	}
	for a, n := range algorithmNames {
		if n.name == lower {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrConfig, s)
}

// Policy decides which queued process runs next on a processor and how long it runs.
// Implementations hold no state, so one value may serve several processors.
type Policy interface {
	// Algorithm returns the algorithm this policy implements.
	Algorithm() Algorithm
	// OrderQueue reorders the ready queue in-place before each selection.
	// Implementations sort with sort.SliceStable so ties keep queue order.
	OrderQueue(procs []*Process)
	// SliceLength returns how much of p's remaining burst the next slice executes.
	SliceLength(p *Process, quantum int32) int32
	// HoldsProcessor reports whether a selected process keeps the processor until it
	// completes. When false, a process with burst left is requeued at the tail.
	HoldsProcessor() bool
}

// FCFSPolicy runs processes in queue order, each for its full remaining burst.
type FCFSPolicy struct{}

func (f *FCFSPolicy) Algorithm() Algorithm { return AlgorithmFCFS }

func (f *FCFSPolicy) OrderQueue(_ []*Process) {
	// No-op: FIFO order preserved from partition order
}

func (f *FCFSPolicy) SliceLength(p *Process, _ int32) int32 { return p.RemainingBurst }

func (f *FCFSPolicy) HoldsProcessor() bool { return true }

// RoundRobinPolicy runs the head of the queue for at most one quantum, then
// sends it to the tail if it still has burst left.
type RoundRobinPolicy struct{}

func (r *RoundRobinPolicy) Algorithm() Algorithm { return AlgorithmRoundRobin }

func (r *RoundRobinPolicy) OrderQueue(_ []*Process) {}

func (r *RoundRobinPolicy) SliceLength(p *Process, quantum int32) int32 {
	return min(p.RemainingBurst, quantum)
}

func (r *RoundRobinPolicy) HoldsProcessor() bool { return false }

// SJFPolicy selects the process with the smallest remaining burst and runs it to
// completion in quantum-sized slices.
// Warning: SJF can starve long processes while short ones keep arriving; here the
// queue only shrinks, so every process eventually runs.
type SJFPolicy struct{}

func (s *SJFPolicy) Algorithm() Algorithm { return AlgorithmSJF }

func (s *SJFPolicy) OrderQueue(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].RemainingBurst < procs[j].RemainingBurst
	})
}

func (s *SJFPolicy) SliceLength(p *Process, quantum int32) int32 {
	return min(p.RemainingBurst, quantum)
}

func (s *SJFPolicy) HoldsProcessor() bool { return true }

// PriorityPolicy selects the process with the highest priority value and runs it
// to completion in quantum-sized slices.
type PriorityPolicy struct{}

func (p *PriorityPolicy) Algorithm() Algorithm { return AlgorithmPriority }

func (p *PriorityPolicy) OrderQueue(procs []*Process) {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].Priority > procs[j].Priority
	})
}

func (p *PriorityPolicy) SliceLength(proc *Process, quantum int32) int32 {
	return min(proc.RemainingBurst, quantum)
}

func (p *PriorityPolicy) HoldsProcessor() bool { return true }

// NewPolicy creates the Policy for a.
// Returns ErrConfig for unknown algorithms; no processor is ever left without a policy.
func NewPolicy(a Algorithm) (Policy, error) {
	switch a {
	case AlgorithmFCFS:
		return &FCFSPolicy{}, nil
	case AlgorithmRoundRobin:
		return &RoundRobinPolicy{}, nil
	case AlgorithmSJF:
		return &SJFPolicy{}, nil
	case AlgorithmPriority:
		return &PriorityPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm code %d", ErrConfig, int(a))
	}
}
