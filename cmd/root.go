package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/inference-sim/procsched/internal/telemetry"
	"github.com/inference-sim/procsched/sim"
	"github.com/inference-sim/procsched/sim/engine"
	"github.com/inference-sim/procsched/sim/trace"
)

const version = "0.1.0"

var (
	logLevel    string // Log verbosity level
	configPath  string // YAML engine config
	quantum     int32  // Slice length override
	sliceDelay  string // Simulated work per slice, as a Go duration
	lockMode    string // "global" or "per-processor"
	traceFile   string // Trace lines go here instead of stdout
	otelTrace   string // OpenTelemetry span export file
	showMetrics bool   // Print the metrics block after the run
)

// rootCmd runs a simulation: procsched <dataFile> <alg> <load> [<alg> <load> ...]
var rootCmd = &cobra.Command{
	Use:   "procsched <dataFile> <algorithm> <load> [<algorithm> <load> ...]",
	Short: "Multi-processor CPU scheduling simulator",
	Long: `Loads process records from a binary workload file, partitions them across
processors by load fraction and runs each processor with its own scheduling
policy concurrently. Algorithms: 0/fcfs, 1/rr, 2/sjf, 3/priority.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: invalid log level %q", sim.ErrConfig, logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation(cmd, args)
	},
}

// parseProcessorArgs splits the positional arguments into the data file and the
// (algorithm, load) pairs that follow it.
func parseProcessorArgs(args []string) (string, []sim.ProcessorSpec, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: missing data file", sim.ErrConfig)
	}
	pairs := args[1:]
	if len(pairs)%2 != 0 {
		return "", nil, fmt.Errorf("%w: algorithm and load arguments must come in pairs, got %d values", sim.ErrConfig, len(pairs))
	}
	specs := make([]sim.ProcessorSpec, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		a, err := sim.ParseAlgorithm(pairs[i])
		if err != nil {
			return "", nil, err
		}
		load, err := strconv.ParseFloat(pairs[i+1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid load fraction %q", sim.ErrConfig, pairs[i+1])
		}
		specs = append(specs, sim.ProcessorSpec{Algorithm: a, Load: load})
	}
	return args[0], specs, nil
}

// resolveEngineConfig layers defaults, the config file and explicitly set flags.
// Processor pairs from the command line win over the file's processors list.
func resolveEngineConfig(cmd *cobra.Command, argSpecs []sim.ProcessorSpec) (sim.EngineConfig, []sim.ProcessorSpec, error) {
	cfg := sim.DefaultEngineConfig()
	specs := argSpecs
	if configPath != "" {
		ef, err := LoadEngineFile(configPath)
		if err != nil {
			return cfg, nil, err
		}
		if err := ef.Apply(&cfg); err != nil {
			return cfg, nil, err
		}
		if len(specs) == 0 {
			if specs, err = ef.ProcessorSpecs(); err != nil {
				return cfg, nil, err
			}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("quantum") {
		cfg.Quantum = quantum
	}
	if flags.Changed("slice-delay") {
		d, err := time.ParseDuration(sliceDelay)
		if err != nil {
			return cfg, nil, fmt.Errorf("%w: --slice-delay: %v", sim.ErrConfig, err)
		}
		cfg.SliceDelay = d
	}
	if flags.Changed("lock-mode") {
		cfg.LockMode = sim.LockMode(lockMode)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	if len(specs) == 0 {
		return cfg, nil, fmt.Errorf("%w: at least one <algorithm> <load> pair is required", sim.ErrConfig)
	}
	// Reject bad loads before the data file is touched.
	loads := make([]float64, len(specs))
	for i, s := range specs {
		loads[i] = s.Load
	}
	if _, err := sim.PartitionCounts(0, loads); err != nil {
		return cfg, nil, err
	}
	return cfg, specs, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	dataFile, argSpecs, err := parseProcessorArgs(args)
	if err != nil {
		return err
	}
	cfg, specs, err := resolveEngineConfig(cmd, argSpecs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	procs, err := sim.LoadProcesses(ctx, afs.New(), dataFile)
	if err != nil {
		return err
	}
	processors, err := sim.BuildProcessors(specs, procs)
	if err != nil {
		return err
	}
	for _, p := range processors {
		logrus.Debugf("%s: %s, load %.3f, %d processes", p.Name(), p.Policy.Algorithm(), p.Load, p.Queue.Len())
	}

	out := cmd.OutOrStdout()
	traceOut := out
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return fmt.Errorf("%w: creating trace file: %v", sim.ErrStorage, err)
		}
		defer f.Close()
		traceOut = f
	}

	if otelTrace != "" {
		shutdown, err := telemetry.Init("procsched", version, otelTrace)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logrus.Warnf("flushing spans: %v", err)
			}
		}()
	}

	ctrl, err := engine.NewController(cfg, processors, trace.NewLineWriter(traceOut))
	if err != nil {
		return err
	}
	if err := ctrl.Run(ctx); err != nil {
		return fmt.Errorf("run %s aborted: %w", ctrl.RunID(), err)
	}

	fmt.Fprintln(out, "All processes completed.")
	if showMetrics {
		ctrl.Metrics().Print(out)
	}
	return nil
}

// exitCode maps an error class to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, sim.ErrConfig):
		return 2
	case errors.Is(err, sim.ErrStorage):
		return 3
	default:
		return 1
	}
}

// Execute runs the CLI and exits with a status reflecting the error class.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.Error(err)
		os.Exit(exitCode(err))
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML engine config (quantum, slice_delay, progress_interval, lock_mode, processors)")
	rootCmd.Flags().Int32Var(&quantum, "quantum", sim.DefaultQuantum, "Time quantum in burst units")
	rootCmd.Flags().StringVar(&sliceDelay, "slice-delay", "10ms", "Wall-clock delay per executed slice")
	rootCmd.Flags().StringVar(&lockMode, "lock-mode", string(sim.LockGlobal), "Queue locking: global or per-processor")
	rootCmd.Flags().StringVar(&traceFile, "trace-file", "", "Write trace lines to this file instead of stdout")
	rootCmd.Flags().StringVar(&otelTrace, "otel-trace", "", "Export OpenTelemetry spans to this file")
	rootCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print run metrics after completion")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", sim.ErrConfig, err)
	})

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
}
