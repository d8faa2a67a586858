package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
)

var statsJSON bool

type columnStats struct {
	Column     string               `json:"column"`
	Statistics *analysis.Statistics `json:"statistics"`
	Outliers   analysis.Outliers    `json:"outliers"`
}

var statsCmd = &cobra.Command{
	Use:   "stats <file> [column...]",
	Short: "Print descriptive statistics and outliers for numeric columns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := parser.New(parser.WithLogger(logger.Named("parser"))).ParseFile(args[0], settings().MaxFileBytes())
		if err != nil {
			return err
		}
		ds := res.Dataset
		summary := analysis.Profile(ds)
		columns := args[1:]
		if len(columns) == 0 {
			columns = summary.ColumnsOfKind(analysis.KindNumeric)
		}
		if len(columns) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no numeric columns found")
			return nil
		}

		var all []columnStats
		for _, col := range columns {
			p, ok := summary.Column(col)
			if !ok {
				return fmt.Errorf("unknown column: %s (available: %s)", col, strings.Join(ds.Columns, ", "))
			}
			if p.Kind != analysis.KindNumeric {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: column %s is %s, skipping\n", col, p.Kind)
				continue
			}
			values := ds.Numbers(col)
			all = append(all, columnStats{
				Column:     col,
				Statistics: analysis.ComputeStatistics(values),
				Outliers:   analysis.DetectOutliers(values),
			})
		}

		if statsJSON {
			b, err := utils.PrettyJSON(all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		for _, cs := range all {
			fmt.Fprint(cmd.OutOrStdout(), formatColumnStats(cs))
		}
		return nil
	},
}

func formatColumnStats(cs columnStats) string {
	st, o := cs.Statistics, cs.Outliers
	var b strings.Builder
	fmt.Fprintf(&b, "%s (n=%d)\n", cs.Column, st.Count)
	fmt.Fprintf(&b, "  mean:     %s\n", dataset.FormatNumber(st.Mean))
	fmt.Fprintf(&b, "  median:   %s\n", dataset.FormatNumber(st.Median))
	fmt.Fprintf(&b, "  mode:     %s\n", dataset.FormatNumber(st.Mode))
	fmt.Fprintf(&b, "  min/max:  %s / %s (range %s)\n",
		dataset.FormatNumber(st.Min), dataset.FormatNumber(st.Max), dataset.FormatNumber(st.Range))
	fmt.Fprintf(&b, "  variance: %s (std %s)\n", dataset.FormatNumber(st.Variance), dataset.FormatNumber(st.StandardDeviation))
	fmt.Fprintf(&b, "  outliers: %d outside [%s, %s]", o.Count, dataset.FormatNumber(o.Lower), dataset.FormatNumber(o.Upper))
	if len(o.Values) > 0 {
		vals := make([]string, len(o.Values))
		for i, v := range o.Values {
			vals[i] = dataset.FormatNumber(v)
		}
		fmt.Fprintf(&b, " e.g. %s", strings.Join(vals, ", "))
	}
	b.WriteString("\n\n")
	return b.String()
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print statistics as JSON")
}
