// Package sim provides the data model and policies of the multi-processor
// scheduling simulator.
//
// # Reading Guide
//
// Start with these files:
//   - process.go: the process record and its burst accounting
//   - codec.go, loader.go: the 63-byte binary record format and afs-backed file I/O
//   - partition.go: splitting a workload across processors by load fraction
//   - scheduler.go: the FCFS, Round Robin, SJF and Priority policies
//
// # Architecture
//
// The sim package holds types with no concurrency of their own; sub-packages
// build on them:
//   - sim/engine/: per-processor workers and the controller that runs them
//   - sim/trace/: slice and completion records, trace sinks, summaries
//
// Errors are classified with errors.Is against ErrConfig and ErrStorage.
package sim
