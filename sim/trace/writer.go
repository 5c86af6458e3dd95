package trace

import (
	"fmt"
	"io"
	"sync"
)

// LineWriter renders slice records as one human-readable line each.
// Completion records produce no output.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter creates a LineWriter writing to w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// FormatSlice renders one slice record, e.g.
//
//	Processor_1  | RR       | PID: 7   | worker-7   | Exec: 2   | Left: 3
//
// Records carrying a priority get a trailing "| Pri: n" column.
func FormatSlice(r SliceRecord) string {
	line := fmt.Sprintf("Processor_%-2d | %-8s | PID: %-3d | %-10s | Exec: %-3d | Left: %-3d",
		r.ProcessorID, r.Policy, r.ProcessID, r.ProcessName, r.Executed, r.Remaining)
	if pri, err := r.Priority.Get(); err == nil {
		line += fmt.Sprintf(" | Pri: %-3d", pri)
	}
	return line
}

func (lw *LineWriter) RecordSlice(record SliceRecord) {
	line := FormatSlice(record)
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, _ = fmt.Fprintln(lw.w, line)
}

func (lw *LineWriter) RecordCompletion(_ CompletionRecord) {}
