package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/inference-sim/procsched/sim"
)

// inspectCmd prints the decoded records of a workload file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <dataFile>",
	Short: "Print the records in a workload file",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: inspect takes exactly one data file, got %d args", sim.ErrConfig, len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		procs, err := sim.LoadProcesses(cmd.Context(), afs.New(), args[0])
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), procs)
		return nil
	},
}

func printRecords(w io.Writer, procs []*sim.Process) {
	fmt.Fprintf(w, "%-6s %-32s %-6s %-8s %-6s %-4s %-5s\n", "PID", "NAME", "BURST", "PRIORITY", "STATUS", "TYPE", "FILES")
	var total int64
	for _, p := range procs {
		fmt.Fprintf(w, "%-6d %-32s %-6d %-8d %-6d %-4d %-5d\n",
			p.ID, p.Name, p.RemainingBurst, p.Priority, p.Status, p.Type, p.NumFiles)
		total += int64(p.RemainingBurst)
	}
	fmt.Fprintf(w, "%d records, total burst %d\n", len(procs), total)
}
