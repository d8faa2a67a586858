package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/export"
	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	expKind   string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the parsed dataset as CSV or a plain-text insights report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := parser.New(parser.WithLogger(logger.Named("parser"))).ParseFile(args[0], settings().MaxFileBytes())
		if err != nil {
			return err
		}
		ds := res.Dataset

		var body, dest string
		switch strings.ToLower(strings.TrimSpace(expKind)) {
		case "csv":
			body, dest = export.CSV(ds), export.CSVFileName(ds.Name)
		case "report", "txt":
			body = export.TextReport(ds.Name, analysis.Analyze(ds), time.Now())
			dest = export.ReportFileName(ds.Name)
		default:
			return fmt.Errorf("unsupported --type: %s (use csv|report)", expKind)
		}
		if expOutput == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		}
		if expOutput != "" {
			dest = expOutput
		}
		if err := utils.SafeWriteFile(dest, []byte(body)); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", ds.Name, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expKind, "type", "t", "csv", "export type: csv|report")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path ('-' for stdout; default derived from the input name)")
}
