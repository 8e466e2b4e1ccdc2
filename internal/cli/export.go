package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/visits-backend-go/internal/repository"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load the visit source and write the normalized records",
	Long: `Writes the normalized record set either as CSV (timestamp, point, place,
latitude, longitude) or as a SQLite snapshot that also keeps the load report.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", repository.FormatCSV, "output format: csv or sqlite")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (required)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOut == "" {
		return errors.New("--out is required")
	}
	if exportFormat != repository.FormatCSV && exportFormat != repository.FormatSQLite {
		return errors.New("--format must be csv or sqlite")
	}

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
	if err := repository.NewExportRepository().Export(rs, exportFormat, exportOut); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", rs.Len(), exportOut)
	return nil
}
