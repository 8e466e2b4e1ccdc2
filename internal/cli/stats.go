package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/visits-backend-go/internal/stats"
)

var statsDaily bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the visit source and print statistics as JSON",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsDaily, "daily", false, "print per-day counts instead of the summary")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rs, err := a.store.Reload(cmd.Context())
	if err != nil {
		return err
	}

	var out any = stats.Summarize(rs)
	if statsDaily {
		days, _, err := a.stats.GetDailyCounts()
		if err != nil {
			return err
		}
		out = days
	}
	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
