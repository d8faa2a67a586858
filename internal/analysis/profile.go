package analysis

import (
	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// ColumnKind is the inferred type of a column.
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindBoolean ColumnKind = "boolean"
	KindText    ColumnKind = "text"
)

// ColumnProfile captures the inferred kind and value counts of one column.
type ColumnProfile struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Missing int        `json:"missingCount"`
	NonNull int        `json:"nonNull"`
	Numeric int        `json:"numericValues"`
	Boolean int        `json:"booleanValues"`
}

// Summary is the dataset-level profile.
//
// Boolean columns are counted in BooleanColumns only; NumericColumns and
// TextColumns therefore need not add up to TotalColumns.
type Summary struct {
	TotalRows      int                   `json:"totalRows"`
	TotalColumns   int                   `json:"totalColumns"`
	NumericColumns int                   `json:"numericColumns"`
	TextColumns    int                   `json:"textColumns"`
	BooleanColumns int                   `json:"booleanColumns"`
	Columns        []ColumnProfile       `json:"columns"`
	ColumnTypes    map[string]ColumnKind `json:"columnTypes"`
	MissingValues  map[string]int        `json:"missingValues"`
}

// majority is satisfied when hits are at least 80% of total.
func majority(hits, total int) bool {
	return total > 0 && hits*5 >= total*4
}

// Profile classifies every column of ds. It never fails: a nil or empty
// dataset yields a zeroed summary with empty maps.
func Profile(ds *dataset.Dataset) Summary {
	s := Summary{
		ColumnTypes:   map[string]ColumnKind{},
		MissingValues: map[string]int{},
	}
	if ds.Len() == 0 {
		return s
	}
	s.TotalRows = ds.Len()
	s.TotalColumns = len(ds.Columns)
	s.Columns = make([]ColumnProfile, 0, len(ds.Columns))

	for i, name := range ds.Columns {
		p := ColumnProfile{Name: name}
		for _, rec := range ds.Records {
			switch rec[i].Kind() {
			case dataset.KindNull:
				p.Missing++
				continue
			case dataset.KindNumber:
				p.Numeric++
			case dataset.KindBool:
				p.Boolean++
			}
			p.NonNull++
		}
		switch {
		case majority(p.Numeric, p.NonNull):
			p.Kind = KindNumeric
			s.NumericColumns++
		case majority(p.Boolean, p.NonNull):
			p.Kind = KindBoolean
			s.BooleanColumns++
		default:
			p.Kind = KindText
			s.TextColumns++
		}
		s.Columns = append(s.Columns, p)
		s.ColumnTypes[name] = p.Kind
		s.MissingValues[name] = p.Missing
	}
	return s
}

// Column returns the profile of the named column.
func (s Summary) Column(name string) (ColumnProfile, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// ColumnsOfKind lists column names of the given kind in declaration order.
func (s Summary) ColumnsOfKind(kind ColumnKind) []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == kind {
			out = append(out, c.Name)
		}
	}
	return out
}
