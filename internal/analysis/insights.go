package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InsightKind classifies an Insight.
type InsightKind string

const (
	InsightSummary      InsightKind = "summary"
	InsightTrend        InsightKind = "trend"
	InsightCorrelation  InsightKind = "correlation"
	InsightOutlier      InsightKind = "outlier"
	InsightDistribution InsightKind = "distribution"
)

// Confidence grades how certain an Insight is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

const (
	// MaxInsights caps the generated list.
	MaxInsights = 10
	// LargeDatasetRows is the row count above which a distribution note is added.
	LargeDatasetRows = 1000
)

// Insight is one human-readable finding. Position in the generated slice is its rank.
type Insight struct {
	Kind        InsightKind `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Confidence  Confidence  `json:"confidence"`
	Value       any         `json:"value,omitempty"`
	Column      string      `json:"column,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// OutlierDetails is attached to outlier insights.
type OutlierDetails struct {
	Outliers []float64 `json:"outliers"`
	Count    int       `json:"count"`
	IQR      float64   `json:"iqr"`
}

// MissingDetails is attached to the missing-data insight.
type MissingDetails struct {
	MissingCount int    `json:"missingCount"`
	Percentage   string `json:"percentage"`
}

// CorrelationDetails is attached to the correlation suggestion.
type CorrelationDetails struct {
	NumericColumns []string `json:"numericColumns"`
}

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 12,345.
func FormatCount(n int) string { return printer.Sprintf("%d", n) }

// GenerateInsights derives the ranked findings for ds. Generation order is the
// ranking: overview, per numeric column statistics (each followed by its
// outliers), the worst missing-data column, the correlation suggestion and the
// large-dataset note. The result holds at most MaxInsights entries.
func GenerateInsights(ds *dataset.Dataset) []Insight {
	if ds.Len() == 0 {
		return nil
	}
	return generate(ds, Profile(ds))
}

func generate(ds *dataset.Dataset, s Summary) []Insight {
	insights := []Insight{{
		Kind:  InsightSummary,
		Title: "Dataset Overview",
		Description: fmt.Sprintf("Your dataset contains %s rows and %d columns, with %d numeric columns for analysis.",
			FormatCount(s.TotalRows), s.TotalColumns, s.NumericColumns),
		Confidence: ConfidenceHigh,
		Value:      s.TotalRows,
	}}

	numeric := s.ColumnsOfKind(KindNumeric)
	for _, col := range numeric {
		values := ds.Numbers(col)
		st := ComputeStatistics(values)
		if st == nil {
			continue
		}
		insights = append(insights, Insight{
			Kind:  InsightSummary,
			Title: col + " Statistics",
			Description: fmt.Sprintf("Average: %.2f, Median: %.2f, Range: %.2f to %.2f",
				st.Mean, st.Median, st.Min, st.Max),
			Confidence: ConfidenceHigh,
			Value:      st.Mean,
			Column:     col,
			Details:    st,
		})
		if o := DetectOutliers(values); o.Count > 0 {
			insights = append(insights, Insight{
				Kind:  InsightOutlier,
				Title: "Outliers Detected in " + col,
				Description: fmt.Sprintf("Found %d potential outliers that may need attention or represent interesting data points.",
					o.Count),
				Confidence: ConfidenceMedium,
				Value:      o.Count,
				Column:     col,
				Details:    OutlierDetails{Outliers: o.Values, Count: o.Count, IQR: o.IQR},
			})
		}
	}

	if col, n := worstMissing(s); n > 0 {
		pct := MissingPercent(n, s.TotalRows)
		insights = append(insights, Insight{
			Kind:  InsightSummary,
			Title: "Missing Data Alert",
			Description: fmt.Sprintf("Column \"%s\" has %d missing values (%s%% of data). Consider data cleaning strategies.",
				col, n, pct),
			Confidence: ConfidenceHigh,
			Value:      n,
			Column:     col,
			Details:    MissingDetails{MissingCount: n, Percentage: pct},
		})
	}

	if len(numeric) >= 2 {
		insights = append(insights, Insight{
			Kind:  InsightCorrelation,
			Title: "Correlation Analysis Available",
			Description: fmt.Sprintf("With %d numeric columns, you can explore relationships between variables like %s.",
				len(numeric), strings.Join(numeric[:2], " and ")),
			Confidence: ConfidenceMedium,
			Details:    CorrelationDetails{NumericColumns: numeric},
		})
	}

	if s.TotalRows > LargeDatasetRows {
		insights = append(insights, Insight{
			Kind:  InsightDistribution,
			Title: "Large Dataset Detected",
			Description: fmt.Sprintf("With %s rows, this dataset is suitable for advanced statistical analysis and machine learning applications.",
				FormatCount(s.TotalRows)),
			Confidence: ConfidenceHigh,
			Value:      s.TotalRows,
		})
	}

	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

// worstMissing returns the column with the most missing values; the earliest
// declared column wins a tie. Columns without missing values are ignored.
func worstMissing(s Summary) (string, int) {
	var (
		name string
		most int
	)
	for _, c := range s.Columns {
		if c.Missing > most {
			name, most = c.Name, c.Missing
		}
	}
	return name, most
}

// MissingPercent formats missing/total as a percentage with one decimal.
func MissingPercent(missing, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(missing)*100/float64(total))
}

// Analysis bundles everything derived from one Dataset.
type Analysis struct {
	Summary  Summary   `json:"summary"`
	Insights []Insight `json:"insights"`
}

// Analyze profiles ds once and derives its insights from that profile.
func Analyze(ds *dataset.Dataset) Analysis {
	s := Profile(ds)
	a := Analysis{Summary: s}
	if ds.Len() > 0 {
		a.Insights = generate(ds, s)
	}
	return a
}
