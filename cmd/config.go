package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/procsched/sim"
)

// EngineFile is the YAML engine configuration passed with --config.
// Every key must be listed here; KnownFields(true) rejects the rest.
type EngineFile struct {
	Quantum          *int32           `yaml:"quantum"`
	SliceDelay       string           `yaml:"slice_delay"`
	ProgressInterval string           `yaml:"progress_interval"`
	LockMode         string           `yaml:"lock_mode"`
	Processors       []ProcessorEntry `yaml:"processors"`
}

// ProcessorEntry is one processor in the config file. Algorithm takes a code or a name.
type ProcessorEntry struct {
	Algorithm string  `yaml:"algorithm"`
	Load      float64 `yaml:"load"`
}

// LoadEngineFile reads and strictly parses an engine config file.
func LoadEngineFile(path string) (*EngineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config %s: %v", sim.ErrConfig, path, err)
	}
	return ParseEngineFile(data)
}

// ParseEngineFile decodes YAML bytes; typos in keys are errors.
func ParseEngineFile(data []byte) (*EngineFile, error) {
	var ef EngineFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ef); err != nil {
		// An empty document decodes to io.EOF; treat it as "no overrides".
		if len(bytes.TrimSpace(data)) == 0 {
			return &ef, nil
		}
		return nil, fmt.Errorf("%w: parsing config: %v", sim.ErrConfig, err)
	}
	return &ef, nil
}

// Apply overlays the values present in the file onto cfg.
func (ef *EngineFile) Apply(cfg *sim.EngineConfig) error {
	if ef.Quantum != nil {
		cfg.Quantum = *ef.Quantum
	}
	if ef.SliceDelay != "" {
		d, err := time.ParseDuration(ef.SliceDelay)
		if err != nil {
			return fmt.Errorf("%w: slice_delay: %v", sim.ErrConfig, err)
		}
		cfg.SliceDelay = d
	}
	if ef.ProgressInterval != "" {
		d, err := time.ParseDuration(ef.ProgressInterval)
		if err != nil {
			return fmt.Errorf("%w: progress_interval: %v", sim.ErrConfig, err)
		}
		cfg.ProgressInterval = d
	}
	if ef.LockMode != "" {
		cfg.LockMode = sim.LockMode(ef.LockMode)
	}
	return nil
}

// ProcessorSpecs converts the processors list; nil when the file lists none.
func (ef *EngineFile) ProcessorSpecs() ([]sim.ProcessorSpec, error) {
	if len(ef.Processors) == 0 {
		return nil, nil
	}
	specs := make([]sim.ProcessorSpec, len(ef.Processors))
	for i, p := range ef.Processors {
		a, err := sim.ParseAlgorithm(p.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("processors[%d]: %w", i, err)
		}
		specs[i] = sim.ProcessorSpec{Algorithm: a, Load: p.Load}
	}
	return specs, nil
}
