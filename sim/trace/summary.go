package trace

// TraceSummary aggregates statistics from an ExecutionTrace.
type TraceSummary struct {
	TotalSlices       int
	CompletedCount    int
	ExecutedByProcess map[int32]int64 // process ID → sum of executed slice lengths
	SlicesByProcessor map[int]int     // processor ID → slices executed
	CompletionOrder   map[int][]int32 // processor ID → process IDs in retirement order
}

// Summarize computes aggregate statistics from an ExecutionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *ExecutionTrace) *TraceSummary {
	summary := &TraceSummary{
		ExecutedByProcess: make(map[int32]int64),
		SlicesByProcessor: make(map[int]int),
		CompletionOrder:   make(map[int][]int32),
	}
	if et == nil {
		return summary
	}

	slices := et.Slices()
	summary.TotalSlices = len(slices)
	for _, s := range slices {
		summary.ExecutedByProcess[s.ProcessID] += int64(s.Executed)
		summary.SlicesByProcessor[s.ProcessorID]++
	}

	completions := et.Completions()
	summary.CompletedCount = len(completions)
	for _, c := range completions {
		summary.CompletionOrder[c.ProcessorID] = append(summary.CompletionOrder[c.ProcessorID], c.ProcessID)
	}
	return summary
}
