package sim

import "fmt"

// GeneratorConfig describes a synthetic workload.
type GeneratorConfig struct {
	Count       int   // number of records (≥ 0)
	Seed        int64 // RNG seed; equal seeds give identical workloads
	MaxBurst    int32 // bursts are drawn uniformly from [1, MaxBurst]
	MaxPriority int8  // priorities are drawn uniformly from [0, MaxPriority]
}

// Validate rejects ranges the generator cannot draw from.
func (c GeneratorConfig) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: count must be non-negative, got %d", ErrConfig, c.Count)
	}
	if c.MaxBurst < 1 {
		return fmt.Errorf("%w: max burst must be at least 1, got %d", ErrConfig, c.MaxBurst)
	}
	if c.MaxPriority < 0 {
		return fmt.Errorf("%w: max priority must be non-negative, got %d", ErrConfig, c.MaxPriority)
	}
	return nil
}

// GenerateWorkload builds Count records with sequential IDs from 0 and names
// "proc_<id>". Payload fields are random but carry no scheduling meaning.
func GenerateWorkload(cfg GeneratorConfig) ([]*Process, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(cfg.Seed)
	bursts := rng.ForStream(StreamBurst)
	priorities := rng.ForStream(StreamPriority)
	payload := rng.ForStream(StreamPayload)

	procs := make([]*Process, cfg.Count)
	for i := range procs {
		p := NewProcess(int32(i), fmt.Sprintf("proc_%d", i),
			1+bursts.Int31n(cfg.MaxBurst),
			int8(priorities.Intn(int(cfg.MaxPriority)+1)))
		p.Status = byte(payload.Intn(2))
		p.BaseRegister = payload.Int31()
		p.LimitRegister = payload.Int63()
		p.Type = byte(payload.Intn(4))
		p.NumFiles = payload.Int31n(16)
		p.Checksum = payload.Int31()
		procs[i] = p
	}
	return procs, nil
}
