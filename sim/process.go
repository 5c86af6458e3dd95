// Defines the Process struct that models one schedulable unit in the simulation.
// Tracks remaining burst and carries the opaque descriptor fields through unchanged.

package sim

import (
	"fmt"
)

// Process is one record of the workload file.
// Only RemainingBurst and Priority are read by the scheduling logic; every other
// field is payload that is decoded, carried and re-encoded untouched.
type Process struct {
	Name           string // process label, at most NameSize bytes on disk
	ID             int32  // unique across the run
	Status         byte   // activity status flag, unused by scheduling
	RemainingBurst int32  // simulated CPU time still required; reaches 0 exactly once
	BaseRegister   int32  // memory descriptor, opaque
	LimitRegister  int64  // memory descriptor, opaque
	Type           byte   // process type tag
	NumFiles       int32  // open file handle count
	Priority       int8   // higher value runs first under the priority policy
	Checksum       int32  // integrity checksum, opaque

	// InitialBurst is the burst the process was loaded with. Not part of the wire format.
	InitialBurst int32
}

// NewProcess creates a Process with the fields the scheduler reads.
// InitialBurst is set from burst; descriptor fields are left zero.
func NewProcess(id int32, name string, burst int32, priority int8) *Process {
	return &Process{
		ID:             id,
		Name:           name,
		RemainingBurst: burst,
		InitialBurst:   burst,
		Priority:       priority,
	}
}

// Complete reports whether the process has no burst left.
func (p *Process) Complete() bool {
	return p.RemainingBurst == 0
}

// Execute consumes up to units of burst and returns the amount actually executed.
// RemainingBurst never drops below zero.
func (p *Process) Execute(units int32) int32 {
	if units < 0 {
		panic(fmt.Sprintf("Execute: negative slice %d for process %d", units, p.ID))
	}
	if units > p.RemainingBurst {
		units = p.RemainingBurst
	}
	p.RemainingBurst -= units
	return units
}

func (p Process) String() string {
	return fmt.Sprintf("Process: (ID: %d, Name: %s, Burst: %d/%d, Priority: %d)", p.ID, p.Name, p.RemainingBurst, p.InitialBurst, p.Priority)
}
