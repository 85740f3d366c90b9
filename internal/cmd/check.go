package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/worktally/worktally/internal/manifest"
)

var checkCmd = &cobra.Command{
	Use:   "check <manifest>",
	Short: "Validate a manifest and show its weight distribution",
	Long: `Check parses and validates a manifest file without running it, then
prints each task's units, weight, and share of the parent total.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	man, err := manifest.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if man.Operation != "" {
		fmt.Fprintf(out, "Operation: %s\n", man.Operation)
	}
	total := man.TotalWeight()
	fmt.Fprintf(out, "Tasks: %d, total weight: %d\n\n", len(man.Tasks), total)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tUNITS\tWEIGHT\tSHARE")
	for _, task := range man.Tasks {
		share := 0.0
		if total > 0 {
			share = float64(task.Weight) / float64(total)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", task.Key, task.Units, task.Weight, share*100)
	}
	return tw.Flush()
}
