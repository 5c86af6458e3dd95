package trace

import "sync"

// Sink receives trace events from processor workers.
// Implementations MUST be safe for concurrent use: every worker calls them.
type Sink interface {
	RecordSlice(record SliceRecord)
	RecordCompletion(record CompletionRecord)
}

// ExecutionTrace collects slice and completion records in arrival order.
type ExecutionTrace struct {
	mu          sync.Mutex
	slices      []SliceRecord
	completions []CompletionRecord
}

// NewExecutionTrace creates an ExecutionTrace ready for recording.
func NewExecutionTrace() *ExecutionTrace {
	return &ExecutionTrace{
		slices:      make([]SliceRecord, 0),
		completions: make([]CompletionRecord, 0),
	}
}

// RecordSlice appends a slice record.
func (et *ExecutionTrace) RecordSlice(record SliceRecord) {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.slices = append(et.slices, record)
}

// RecordCompletion appends a completion record.
func (et *ExecutionTrace) RecordCompletion(record CompletionRecord) {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.completions = append(et.completions, record)
}

// Slices returns a copy of the recorded slices.
func (et *ExecutionTrace) Slices() []SliceRecord {
	et.mu.Lock()
	defer et.mu.Unlock()
	return append([]SliceRecord(nil), et.slices...)
}

// Completions returns a copy of the recorded completions.
func (et *ExecutionTrace) Completions() []CompletionRecord {
	et.mu.Lock()
	defer et.mu.Unlock()
	return append([]CompletionRecord(nil), et.completions...)
}

// SlicesFor returns the slices executed on one processor, in execution order.
func (et *ExecutionTrace) SlicesFor(processorID int) []SliceRecord {
	et.mu.Lock()
	defer et.mu.Unlock()
	var out []SliceRecord
	for _, s := range et.slices {
		if s.ProcessorID == processorID {
			out = append(out, s)
		}
	}
	return out
}

type teeSink []Sink

// Tee returns a Sink that forwards every record to each non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	out := make(teeSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t teeSink) RecordSlice(record SliceRecord) {
	for _, s := range t {
		s.RecordSlice(record)
	}
}

func (t teeSink) RecordCompletion(record CompletionRecord) {
	for _, s := range t {
		s.RecordCompletion(record)
	}
}
