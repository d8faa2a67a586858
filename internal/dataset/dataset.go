package dataset

import (
	"github.com/google/uuid"
)

// Record is one data row, aligned with the dataset's column order.
type Record []Value

// Dataset is the immutable result of one upload. Callers must not modify
// Columns or Records after construction.
type Dataset struct {
	ID      string
	Name    string
	Columns []string
	Records []Record

	index map[string]int
}

// New builds a Dataset with a fresh identity. Records shorter than the column
// list are padded with nulls.
func New(name string, columns []string, records []Record) *Dataset {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	for i, r := range records {
		if len(r) < len(columns) {
			padded := make(Record, len(columns))
			copy(padded, r)
			records[i] = padded
		}
	}
	return &Dataset{
		ID:      uuid.NewString(),
		Name:    name,
		Columns: columns,
		Records: records,
		index:   idx,
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Index returns the position of the named column.
func (d *Dataset) Index(column string) (int, bool) {
	if d == nil {
		return 0, false
	}
	i, ok := d.index[column]
	return i, ok
}

// Value returns the cell at row for the named column; null when either is out of range.
func (d *Dataset) Value(row int, column string) Value {
	i, ok := d.Index(column)
	if !ok || row < 0 || row >= len(d.Records) {
		return Null()
	}
	return d.Records[row][i]
}

// Numbers returns the numeric cells of the named column in row order.
func (d *Dataset) Numbers(column string) []float64 {
	i, ok := d.Index(column)
	if !ok {
		return nil
	}
	var out []float64
	for _, rec := range d.Records {
		if f, ok := rec[i].Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Page returns up to limit records starting at offset. Out-of-range
// bounds are clamped; a non-positive limit yields no records.
func (d *Dataset) Page(offset, limit int) []Record {
	n := d.Len()
	if offset < 0 {
		offset = 0
	}
	if offset >= n || limit <= 0 {
		return []Record{}
	}
	end := offset + limit
	if end > n || end < offset {
		end = n
	}
	return d.Records[offset:end]
}

// Map returns a row as a column→scalar mapping.
func (d *Dataset) Map(row int) map[string]any {
	if row < 0 || row >= d.Len() {
		return nil
	}
	m := make(map[string]any, len(d.Columns))
	for _, c := range d.Columns {
		m[c] = d.Value(row, c).Interface()
	}
	return m
}
