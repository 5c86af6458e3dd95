// Tracks run-wide and per-processor execution statistics.

package engine

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about a run for final reporting.
// Workers update it concurrently; read it only after Controller.Run returns.
type Metrics struct {
	mu sync.Mutex

	RunID                string
	Processors           int
	CompletedProcesses   int
	TotalSlices          int
	ExecutedUnits        int64         // sum of executed slice lengths across all processes
	SlicesByProcessor    map[int]int   // processor index → slices executed
	CompletedByProcessor map[int]int   // processor index → processes retired
	Turnarounds          []float64     // seconds from run start to each retirement, in retirement order
	Elapsed              time.Duration // wall-clock duration of the run

	startedAt time.Time
}

func newMetrics(runID string, processors int) *Metrics {
	return &Metrics{
		RunID:                runID,
		Processors:           processors,
		SlicesByProcessor:    make(map[int]int),
		CompletedByProcessor: make(map[int]int),
	}
}

func (m *Metrics) start(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startedAt = t
}

func (m *Metrics) finish(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Elapsed = elapsed
}

func (m *Metrics) recordSlice(processor int, executed int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalSlices++
	m.ExecutedUnits += int64(executed)
	m.SlicesByProcessor[processor]++
}

func (m *Metrics) recordCompletion(processor int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletedProcesses++
	m.CompletedByProcessor[processor]++
	m.Turnarounds = append(m.Turnarounds, time.Since(m.startedAt).Seconds())
}

// TurnaroundStats returns the mean, standard deviation and 90th percentile of the
// turnaround times, in seconds. Standard deviation is 0 with fewer than two samples;
// all values are 0 with no samples.
func (m *Metrics) TurnaroundStats() (mean, stddev, p90 float64) {
	m.mu.Lock()
	data := append([]float64(nil), m.Turnarounds...)
	m.mu.Unlock()
	if len(data) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(data)
	mean = stat.Mean(data, nil)
	if len(data) > 1 {
		stddev = stat.StdDev(data, nil)
	}
	p90 = stat.Quantile(0.9, stat.Empirical, data, nil)
	if math.IsNaN(stddev) {
		stddev = 0
	}
	return mean, stddev, p90
}

// Print writes the aggregated metrics to w.
func (m *Metrics) Print(w io.Writer) {
	mean, stddev, p90 := m.TurnaroundStats()
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = fmt.Fprintln(w, "=== Simulation Metrics ===")
	_, _ = fmt.Fprintf(w, "Run ID               : %s\n", m.RunID)
	_, _ = fmt.Fprintf(w, "Processors           : %d\n", m.Processors)
	_, _ = fmt.Fprintf(w, "Completed Processes  : %d\n", m.CompletedProcesses)
	_, _ = fmt.Fprintf(w, "Executed Slices      : %d\n", m.TotalSlices)
	_, _ = fmt.Fprintf(w, "Executed Burst Units : %d\n", m.ExecutedUnits)
	_, _ = fmt.Fprintf(w, "Elapsed              : %v\n", m.Elapsed)
	if m.CompletedProcesses > 0 {
		_, _ = fmt.Fprintf(w, "Turnaround mean      : %.3f s\n", mean)
		_, _ = fmt.Fprintf(w, "Turnaround stddev    : %.3f s\n", stddev)
		_, _ = fmt.Fprintf(w, "Turnaround p90       : %.3f s\n", p90)
	}
	for idx := 1; idx <= m.Processors; idx++ {
		_, _ = fmt.Fprintf(w, "Processor_%-2d         : %d slices, %d completed\n",
			idx, m.SlicesByProcessor[idx], m.CompletedByProcessor[idx])
	}
}
