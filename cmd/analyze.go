package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	anaOutputPath string
	anaFormat     string
	anaSampleRows int
	anaCorr       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV file and produce a summary with ranked insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		opt := analysis.DefaultOptions()
		opt.SampleRows = c.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = anaSampleRows
		}
		opt.Correlations = anaCorr
		format := c.ReportFormat
		if anaFormat != "" {
			format = anaFormat
		}

		rep, err := analyzeFile(args[0], opt)
		if err != nil {
			return err
		}
		out, err := renderReport(rep, format)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// analyzeFile parses path and builds its report. Rows dropped while parsing
// are listed as report notes.
func analyzeFile(path string, opt analysis.Options) (*analysis.Report, error) {
	p := parser.New(parser.WithLogger(logger.Named("parser")))
	res, err := p.ParseFile(path, settings().MaxFileBytes())
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filepath.Base(path), err)
	}
	rep := analysis.NewReport(res.Dataset, opt)
	for _, m := range res.Skipped {
		rep.AddWarning("skipped %s", m)
	}
	if res.BlankRows > 0 {
		rep.AddWarning("dropped %d blank rows", res.BlankRows)
	}
	return rep, nil
}

// renderReport renders rep as markdown, json or yaml.
func renderReport(rep *analysis.Report, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return rep.Markdown(), nil
	case "json":
		b, err := utils.PrettyJSON(rep)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(rep)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", format)
	}
}

// reportExt maps an output format to a file extension.
func reportExt(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	default:
		return ".md"
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (default from config)")
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", false, "compute Pearson correlations among numeric columns")
}
