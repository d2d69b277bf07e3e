package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultHistoryLimit is how many runs "history list" shows.
const DefaultHistoryLimit = 20

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs",
	Long:  `Without a subcommand, history lists recent runs like "history list".`,
	Args:  cobra.NoArgs,
	RunE:  listRuns,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  listRuns,
}

func listRuns(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	runs, err := a.History.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, style.Muted.Render("No runs recorded."))
		return nil
	}
	for _, r := range runs {
		printRunLine(out, r)
	}
	return nil
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run by ID or ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		run, err := a.History.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		printSummary(cmd.OutOrStdout(), run)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", DefaultHistoryLimit, "maximum number of runs")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the stored summary as JSON")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
