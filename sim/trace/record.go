// Package trace provides execution-trace recording for scheduling analysis.
// This package has no dependencies on sim/ or sim/engine/; it stores pure data types.
package trace

import "github.com/markphelps/optional"

// SliceRecord captures one executed slice on one processor.
type SliceRecord struct {
	ProcessorID int
	Policy      string
	ProcessID   int32
	ProcessName string
	Executed    int32
	Remaining   int32
	Priority    optional.Int // present only for the priority policy
}

// CompletionRecord captures the retirement of a process.
type CompletionRecord struct {
	ProcessorID int
	ProcessID   int32
	Outstanding int64 // outstanding counter right after this retirement
}
