package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWorkload_RangesAndIDs(t *testing.T) {
	// GIVEN a generator config
	cfg := GeneratorConfig{Count: 200, Seed: 3, MaxBurst: 7, MaxPriority: 4}

	// WHEN a workload is generated
	procs, err := GenerateWorkload(cfg)
	require.NoError(t, err)

	// THEN every record is in range with sequential IDs
	require.Len(t, procs, 200)
	for i, p := range procs {
		assert.Equal(t, int32(i), p.ID)
		assert.GreaterOrEqual(t, p.RemainingBurst, int32(1))
		assert.LessOrEqual(t, p.RemainingBurst, int32(7))
		assert.Equal(t, p.RemainingBurst, p.InitialBurst)
		assert.GreaterOrEqual(t, p.Priority, int8(0))
		assert.LessOrEqual(t, p.Priority, int8(4))
	}
	assert.Equal(t, "proc_0", procs[0].Name)
}

func TestGenerateWorkload_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Count: 50, Seed: 99, MaxBurst: 20, MaxPriority: 9}
	a, err := GenerateWorkload(cfg)
	require.NoError(t, err)
	b, err := GenerateWorkload(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateWorkload_EncodesCleanly(t *testing.T) {
	// Generated records must survive the codec byte-for-byte.
	procs, err := GenerateWorkload(GeneratorConfig{Count: 10, Seed: 1, MaxBurst: 5, MaxPriority: 127})
	require.NoError(t, err)
	data, err := EncodeProcesses(procs)
	require.NoError(t, err)
	decoded, err := DecodeProcesses(data)
	require.NoError(t, err)
	assert.Equal(t, procs, decoded)
}

func TestGenerateWorkload_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeneratorConfig
	}{
		{"negative count", GeneratorConfig{Count: -1, MaxBurst: 1}},
		{"zero max burst", GeneratorConfig{Count: 1, MaxBurst: 0}},
		{"negative max priority", GeneratorConfig{Count: 1, MaxBurst: 1, MaxPriority: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateWorkload(tt.cfg)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestGenerateWorkload_Empty(t *testing.T) {
	procs, err := GenerateWorkload(GeneratorConfig{Count: 0, MaxBurst: 1})
	require.NoError(t, err)
	assert.Empty(t, procs)
}
