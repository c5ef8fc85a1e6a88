package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/runway/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the forecast to a CSV, JSON or Excel file",
	Example: `  runway export --out forecast.xlsx
  runway export --format csv --preset optimistic > forecast.csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "csv, json or xlsx (default from --out extension, else csv)")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	addInputFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

func exportFormat() (export.Format, error) {
	switch {
	case flagExportFormat != "":
		return export.ParseFormat(flagExportFormat)
	case flagExportOut != "":
		return export.FormatForPath(flagExportOut)
	}
	return export.FormatCSV, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := exportFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := newController(cmd, cfg)
	if err != nil {
		return err
	}

	exp := export.New(log)
	snap := ctrl.Current()
	if flagExportOut == "" {
		if format == export.FormatXLSX {
			return errors.New("xlsx needs --out FILE")
		}
		return exp.Write(os.Stdout, format, snap)
	}

	if err := exp.WriteFile(flagExportOut, format, snap); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %d periods to %s\n", len(snap.Points), flagExportOut)
	}
	return nil
}
