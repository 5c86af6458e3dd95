package sim

import (
	"hash/fnv"
	"math/rand"
)

// RNG streams used by the workload generator. Each field draws from its own
// stream so changing one distribution does not shift the others.
const (
	StreamBurst    = "burst"
	StreamPriority = "priority"
	StreamPayload  = "payload"
)

// PartitionedRNG hands out deterministic, isolated *rand.Rand instances per stream.
//
// Derivation: StreamBurst uses the seed directly; every other stream uses
// seed XOR fnv1a64(name).
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:    seed,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns the cached RNG for name, creating it on first use. Never nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	derived := p.seed
	if name != StreamBurst {
		derived ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.streams[name] = rng
	return rng
}

// Seed returns the seed the streams derive from.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
