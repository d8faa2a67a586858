package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/csvlens/internal/analysis"
)

// TextReport renders the plain-text analysis report offered for download.
func TextReport(name string, a analysis.Analysis, generated time.Time) string {
	s := a.Summary
	var b strings.Builder
	b.WriteString("Data Analysis Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format("1/2/2006"))
	fmt.Fprintf(&b, "Dataset: %s\n\n", name)

	b.WriteString("DATASET SUMMARY\n================\n")
	fmt.Fprintf(&b, "Total Rows: %s\n", analysis.FormatCount(s.TotalRows))
	fmt.Fprintf(&b, "Total Columns: %d\n", s.TotalColumns)
	fmt.Fprintf(&b, "Numeric Columns: %d\n", s.NumericColumns)
	fmt.Fprintf(&b, "Text Columns: %d\n\n", s.TextColumns)

	b.WriteString("KEY INSIGHTS\n=============\n")
	for i, in := range a.Insights {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   Confidence: %s\n", i+1, in.Title, in.Description, in.Confidence)
		if in.Column != "" {
			fmt.Fprintf(&b, "   Column: %s\n", in.Column)
		}
		b.WriteString("\n")
	}

	b.WriteString("MISSING DATA\n=============\n")
	missing := 0
	for _, c := range s.Columns {
		if c.Missing == 0 {
			continue
		}
		missing++
		fmt.Fprintf(&b, "%s: %d missing values (%s%%)\n", c.Name, c.Missing, analysis.MissingPercent(c.Missing, s.TotalRows))
	}
	if missing == 0 {
		b.WriteString("No missing data detected\n")
	}

	b.WriteString("\nCOLUMN TYPES\n=============\n")
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Kind)
	}
	return b.String()
}

// ReportFileName derives the download name of the text report for a dataset file.
func ReportFileName(name string) string {
	base := strings.TrimSuffix(name, ".csv")
	return "insights_" + base + "_report.txt"
}

// CSVFileName derives the download name of the re-serialized dataset.
func CSVFileName(name string) string {
	return "processed_" + name
}
