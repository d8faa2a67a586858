package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlations computes pairwise Pearson r over rows where both columns are
// numeric. Pairs with fewer than two shared rows or zero variance get 0.
func Correlations(ds *dataset.Dataset, columns []string) *CorrMatrix {
	if len(columns) < 2 {
		return nil
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, ok := ds.Index(c)
		if !ok {
			return nil
		}
		idx[i] = j
	}
	n := len(columns)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys []float64
			for _, rec := range ds.Records {
				x, okx := rec[idx[a]].Float()
				y, oky := rec[idx[b]].Float()
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			r = math.Max(-1, math.Min(1, r))
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: columns, Values: mat}
}

// TopPairs lists the off-diagonal pairs ordered by |r|, strongest first.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
