// Package chat answers canned questions about a dataset by matching keywords
// against a fixed set of templates. Answers are deterministic.
package chat

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/analysis"
)

// Topic names the template a question was matched to.
type Topic string

const (
	TopicSummary  Topic = "summary"
	TopicCharts   Topic = "charts"
	TopicTrends   Topic = "trends"
	TopicOutliers Topic = "outliers"
	TopicMissing  Topic = "missing"
	TopicColumns  Topic = "columns"
	TopicHelp     Topic = "help"
)

var topics = []struct {
	topic    Topic
	keywords []string
}{
	{TopicSummary, []string{"summary", "overview"}},
	{TopicCharts, []string{"chart", "visualiz"}},
	{TopicTrends, []string{"trend", "pattern"}},
	{TopicOutliers, []string{"outlier", "unusual"}},
	{TopicMissing, []string{"missing", "incomplete"}},
	{TopicColumns, []string{"column", "field"}},
}

// Classify returns the first topic whose keywords appear in question.
func Classify(question string) Topic {
	q := strings.ToLower(question)
	for _, t := range topics {
		for _, k := range t.keywords {
			if strings.Contains(q, k) {
				return t.topic
			}
		}
	}
	return TopicHelp
}

// Answer renders the template matched by question over a.
func Answer(question string, a analysis.Analysis) string {
	s := a.Summary
	numeric := s.ColumnsOfKind(analysis.KindNumeric)
	switch Classify(question) {
	case TopicSummary:
		return summaryAnswer(s, numeric, a.Insights)
	case TopicCharts:
		return chartAnswer(numeric)
	case TopicTrends:
		return trendAnswer(numeric, a.Insights)
	case TopicOutliers:
		return outlierAnswer(a.Insights)
	case TopicMissing:
		return missingAnswer(s)
	case TopicColumns:
		return columnAnswer(s, numeric)
	default:
		return helpAnswer(s, a.Insights)
	}
}

func summaryAnswer(s analysis.Summary, numeric []string, ins []analysis.Insight) string {
	var b strings.Builder
	b.WriteString("Based on your dataset, here's what I can tell you:\n\n")
	b.WriteString("Dataset Overview:\n")
	fmt.Fprintf(&b, "- %s total rows\n", analysis.FormatCount(s.TotalRows))
	fmt.Fprintf(&b, "- %d columns (%d numeric, %d text)\n", s.TotalColumns, s.NumericColumns, s.TextColumns)
	fmt.Fprintf(&b, "- Key numeric columns: %s\n\n", strings.Join(head(numeric, 3), ", "))
	b.WriteString("Top Insights:\n")
	for _, in := range headInsights(ins, 3) {
		fmt.Fprintf(&b, "• %s: %s\n", in.Title, in.Description)
	}
	b.WriteString("\nWould you like me to dive deeper into any specific aspect of your data?")
	return b.String()
}

func chartAnswer(numeric []string) string {
	var suggestions []string
	if len(numeric) >= 2 {
		suggestions = append(suggestions, fmt.Sprintf("Scatter Plot: Compare %s vs %s to find correlations", numeric[0], numeric[1]))
	}
	if len(numeric) >= 1 {
		suggestions = append(suggestions,
			fmt.Sprintf("Bar Chart: Show distribution of %s values", numeric[0]),
			fmt.Sprintf("Line Chart: Track trends in %s over time", numeric[0]))
	}
	var b strings.Builder
	b.WriteString("Based on your data structure, here are some visualization recommendations:\n\n")
	for _, s := range suggestions {
		b.WriteString("- " + s + "\n")
	}
	if len(suggestions) == 0 {
		b.WriteString("- No numeric columns were found, so a frequency table of text values is the best starting point.\n")
	}
	b.WriteString("\nWould you like me to explain how to interpret any specific chart type?")
	return b.String()
}

func trendAnswer(numeric []string, ins []analysis.Insight) string {
	found := filterInsights(ins, analysis.InsightTrend, analysis.InsightCorrelation)
	if len(found) == 0 {
		return fmt.Sprintf("To identify trends, I'd need to analyze your data over time or look for correlations between variables.\n\n"+
			"Your dataset has %d numeric columns that I can analyze for patterns. Some questions that might reveal trends:\n"+
			"- How do values change over time?\n"+
			"- Are there seasonal patterns?\n"+
			"- Do certain variables move together?\n\n"+
			"Can you tell me more about what kind of trends you're looking for?", len(numeric))
	}
	var b strings.Builder
	b.WriteString("I've identified these patterns in your data:\n\n")
	for _, in := range found {
		fmt.Fprintf(&b, "%s: %s\n\n", in.Title, in.Description)
	}
	b.WriteString("These patterns can help you understand the underlying relationships in your dataset.")
	return b.String()
}

func outlierAnswer(ins []analysis.Insight) string {
	found := filterInsights(ins, analysis.InsightOutlier)
	if len(found) == 0 {
		return "Good news! I haven't detected any obvious outliers in your numeric columns. " +
			"This suggests your data is relatively consistent.\n\n" +
			"Is there a particular column where you suspect outliers might exist?"
	}
	var b strings.Builder
	b.WriteString("I've detected some outliers in your data:\n\n")
	for _, in := range found {
		fmt.Fprintf(&b, "%s: %s\n\n", in.Title, in.Description)
	}
	b.WriteString("Outliers can represent:\n")
	b.WriteString("- Data entry errors that need correction\n")
	b.WriteString("- Exceptional cases worth investigating\n")
	b.WriteString("- Natural variation in your dataset")
	return b.String()
}

func missingAnswer(s analysis.Summary) string {
	var lines []string
	for _, c := range s.Columns {
		if c.Missing > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %d missing values (%s%%)",
				c.Name, c.Missing, analysis.MissingPercent(c.Missing, s.TotalRows)))
		}
	}
	if len(lines) == 0 {
		return fmt.Sprintf("Excellent! Your dataset appears to be complete with no missing values detected across all %d columns.",
			s.TotalColumns)
	}
	return "I found missing data in your dataset:\n\n" + strings.Join(lines, "\n") +
		"\n\nRecommendations:\n" +
		"- For small amounts of missing data (<5%), you might remove those rows\n" +
		"- For larger gaps, consider filling with averages or median values\n" +
		"- Sometimes missing data is meaningful and should be treated as a separate category"
}

func columnAnswer(s analysis.Summary, numeric []string) string {
	text := s.ColumnsOfKind(analysis.KindText)
	return fmt.Sprintf("Your dataset contains %d columns:\n\n"+
		"Numeric columns (%d): %s\n"+
		"Text columns (%d): %s\n\n"+
		"Which columns are you most interested in analyzing?",
		s.TotalColumns, s.NumericColumns, strings.Join(numeric, ", "), s.TextColumns, strings.Join(text, ", "))
}

func helpAnswer(s analysis.Summary, ins []analysis.Insight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm here to help you understand your data! Based on your dataset with %s rows and %d columns, I can help you with:\n\n",
		analysis.FormatCount(s.TotalRows), s.TotalColumns)
	b.WriteString("- \"Give me a summary of this data\"\n")
	b.WriteString("- \"What patterns do you see?\"\n")
	b.WriteString("- \"Are there any outliers?\"\n")
	b.WriteString("- \"What charts should I create?\"\n\n")
	b.WriteString("Quick Insights:\n")
	for _, in := range headInsights(ins, 2) {
		fmt.Fprintf(&b, "• %s\n", in.Title)
	}
	b.WriteString("\nWhat would you like to explore first?")
	return b.String()
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func headInsights(ins []analysis.Insight, n int) []analysis.Insight {
	if len(ins) > n {
		return ins[:n]
	}
	return ins
}

func filterInsights(ins []analysis.Insight, kinds ...analysis.InsightKind) []analysis.Insight {
	var out []analysis.Insight
	for _, in := range ins {
		for _, k := range kinds {
			if in.Kind == k {
				out = append(out, in)
				break
			}
		}
	}
	return out
}
