package cli

import (
	"github.com/spf13/cobra"
)

var inspectSample int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Describe the raw visit source (columns, sample rows, empty cells)",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectSample, "sample", "n", 5, "number of sample rows")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	structure, err := a.visits.GetStructure(cmd.Context(), inspectSample)
	if err != nil {
		return err
	}
	return printJSON(cmd, structure)
}
