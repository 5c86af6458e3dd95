package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/inference-sim/procsched/sim"
)

var (
	genCount       int   // Number of records
	genSeed        int64 // Generator seed
	genMaxBurst    int32 // Upper bound on burst
	genMaxPriority int8  // Upper bound on priority
)

// generateCmd writes a synthetic workload file.
var generateCmd = &cobra.Command{
	Use:   "generate <dataFile>",
	Short: "Write a synthetic workload file",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: generate takes exactly one data file, got %d args", sim.ErrConfig, len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		procs, err := sim.GenerateWorkload(sim.GeneratorConfig{
			Count:       genCount,
			Seed:        genSeed,
			MaxBurst:    genMaxBurst,
			MaxPriority: genMaxPriority,
		})
		if err != nil {
			return err
		}
		if err := sim.SaveProcesses(cmd.Context(), afs.New(), args[0], procs); err != nil {
			return err
		}
		logrus.Infof("generated %d processes (seed %d)", len(procs), genSeed)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d processes to %s\n", len(procs), args[0])
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVar(&genCount, "count", 20, "Number of processes")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Seed for burst, priority and payload generation")
	generateCmd.Flags().Int32Var(&genMaxBurst, "max-burst", 10, "Maximum burst time")
	generateCmd.Flags().Int8Var(&genMaxPriority, "max-priority", 9, "Maximum priority")
}
