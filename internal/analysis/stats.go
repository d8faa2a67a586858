package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics are the descriptive statistics of one numeric column.
type Statistics struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Mode              float64 `json:"mode"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Range             float64 `json:"range"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standardDeviation"`
	Count             int     `json:"count"`
}

// ComputeStatistics returns nil for an empty input. Variance is the
// population variance (divisor n).
func ComputeStatistics(values []float64) *Statistics {
	if len(values) == 0 {
		return nil
	}
	sorted := sortedCopy(values)
	mean, variance := stat.PopMeanVariance(values, nil)
	lo, hi := floats.Min(values), floats.Max(values)
	return &Statistics{
		Mean:              mean,
		Median:            median(sorted),
		Mode:              mode(values),
		Min:               lo,
		Max:               hi,
		Range:             hi - lo,
		Variance:          variance,
		StandardDeviation: math.Sqrt(variance),
		Count:             len(values),
	}
}

func sortedCopy(values []float64) []float64 {
	cp := make([]float64, len(values))
	copy(cp, values)
	sort.Float64s(cp)
	return cp
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// mode returns the most frequent value. On a tie the value whose first
// occurrence comes earliest wins.
func mode(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	order := make([]float64, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := order[0], 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

// MaxReportedOutliers caps how many outlier values are kept for reporting.
const MaxReportedOutliers = 5

// Outliers is the result of IQR fencing over one numeric column.
type Outliers struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lowerFence"`
	Upper float64 `json:"upperFence"`
	// Count is the total number of outliers found.
	Count int `json:"count"`
	// Values holds the first MaxReportedOutliers outliers in input order.
	Values []float64 `json:"outliers"`
}

// DetectOutliers fences values at Q1-1.5·IQR and Q3+1.5·IQR, where Q1 and Q3
// are the sorted elements at indexes ⌊0.25·n⌋ and ⌊0.75·n⌋ (no interpolation).
func DetectOutliers(values []float64) Outliers {
	if len(values) == 0 {
		return Outliers{}
	}
	sorted := sortedCopy(values)
	n := len(sorted)
	q1 := sorted[int(math.Floor(float64(n)*0.25))]
	q3 := sorted[int(math.Floor(float64(n)*0.75))]
	iqr := q3 - q1
	o := Outliers{Q1: q1, Q3: q3, IQR: iqr, Lower: q1 - 1.5*iqr, Upper: q3 + 1.5*iqr}
	for _, v := range values {
		if v < o.Lower || v > o.Upper {
			o.Count++
			if len(o.Values) < MaxReportedOutliers {
				o.Values = append(o.Values, v)
			}
		}
	}
	return o
}
