package sim

import (
	"fmt"
	"math"
)

// PartitionCounts computes how many of n records each processor receives.
// Each processor gets floor(n × fraction); the remainder is handed out one unit at a
// time to processors 0, 1, 2, … wrapping around. Fractions need not sum to 1.
// When they sum above 1 the surplus is taken back from the last processors first,
// so the counts always sum to n and none is negative.
func PartitionCounts(n int, fractions []float64) ([]int, error) {
	if len(fractions) == 0 {
		return nil, fmt.Errorf("%w: at least one processor is required", ErrConfig)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative process count %d", ErrConfig, n)
	}
	counts := make([]int, len(fractions))
	remaining := n
	for i, f := range fractions {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return nil, fmt.Errorf("%w: invalid load fraction %v for processor %d", ErrConfig, f, i+1)
		}
		// Clamp before converting: n×f may exceed the int range.
		target := math.Min(math.Floor(float64(n)*f), float64(n))
		counts[i] = int(target)
		remaining -= counts[i]
	}
	for i := 0; remaining > 0; i++ {
		counts[i%len(counts)]++
		remaining--
	}
	for i := len(counts) - 1; remaining < 0; {
		if counts[i] == 0 {
			i--
			continue
		}
		counts[i]--
		remaining++
	}
	return counts, nil
}

// Partition splits procs across len(fractions) processors positionally: the first
// counts[0] records go to processor 0, the next counts[1] to processor 1, and so on.
// Every record lands in exactly one partition.
func Partition(procs []*Process, fractions []float64) ([][]*Process, error) {
	counts, err := PartitionCounts(len(procs), fractions)
	if err != nil {
		return nil, err
	}
	parts := make([][]*Process, len(counts))
	idx := 0
	for i, c := range counts {
		parts[i] = procs[idx : idx+c : idx+c]
		idx += c
	}
	return parts, nil
}
