package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// Options controls report rendering.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for dataset reports.
func DefaultOptions() Options {
	return Options{SampleRows: 5}
}

// Report is a markdown-friendly analysis of a parsed dataset.
type Report struct {
	Name     string      `json:"name"`
	Summary  Summary     `json:"summary"`
	Insights []Insight   `json:"insights"`
	Samples  [][]string  `json:"samples,omitempty"`
	Corr     *CorrMatrix `json:"correlations,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	columns  []string
	stats    map[string]*Statistics
}

// NewReport analyzes ds and captures what the Markdown rendering needs.
func NewReport(ds *dataset.Dataset, opt Options) *Report {
	a := Analyze(ds)
	rep := &Report{
		Summary:  a.Summary,
		Insights: a.Insights,
		stats:    map[string]*Statistics{},
	}
	if ds == nil {
		return rep
	}
	rep.Name = ds.Name
	rep.columns = ds.Columns
	for _, col := range a.Summary.ColumnsOfKind(KindNumeric) {
		rep.stats[col] = ComputeStatistics(ds.Numbers(col))
	}
	for i := 0; i < opt.SampleRows && i < ds.Len(); i++ {
		row := make([]string, len(ds.Columns))
		for j, v := range ds.Records[i] {
			row[j] = v.String()
		}
		rep.Samples = append(rep.Samples, row)
	}
	if opt.Correlations {
		rep.Corr = Correlations(ds, a.Summary.ColumnsOfKind(KindNumeric))
	}
	return rep
}

// AddWarning appends a note rendered in the [NOTES] section.
func (r *Report) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	s := r.Summary
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %s\n", FormatCount(s.TotalRows)))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, text %d, boolean %d)\n\n",
		s.TotalColumns, s.NumericColumns, s.TextColumns, s.BooleanColumns))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Columns {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %s%%)",
			safeName(c.Name), c.Kind, c.NonNull, MissingPercent(c.Missing, s.TotalRows)))
		if st := r.stats[c.Name]; st != nil {
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g",
				st.Min, st.Max, st.Mean, st.Median, st.StandardDeviation))
		}
		b.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		b.WriteString("\n[INSIGHTS]\n")
		for i, in := range r.Insights {
			b.WriteString(fmt.Sprintf("%d. %s (%s, %s confidence)\n   %s\n",
				i+1, in.Title, in.Kind, in.Confidence, in.Description))
		}
	}

	if pairs := r.Corr.TopPairs(10); len(pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c))
		}
		b.WriteString(" |\n| ")
		for i := range r.columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
