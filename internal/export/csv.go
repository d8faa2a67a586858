package export

import (
	"io"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// CSV re-serializes ds: a header line, then one line per record. Header names
// and text cells containing a comma or a quote are enclosed in quotes with quotes doubled;
// null cells are written empty.
func CSV(ds *dataset.Dataset) string {
	var b strings.Builder
	_ = WriteCSV(&b, ds)
	return b.String()
}

// WriteCSV streams the CSV form of ds to w.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return nil
	}
	lines := make([]string, 0, ds.Len()+1)
	fields := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		fields[i] = quote(c)
	}
	lines = append(lines, strings.Join(fields, ","))
	for _, rec := range ds.Records {
		for i, v := range rec {
			fields[i] = escape(v)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func escape(v dataset.Value) string {
	s, ok := v.Str()
	if !ok {
		return v.String()
	}
	return quote(s)
}

// quote encloses s in quotes, doubling inner quotes, when it holds a comma or a quote.
func quote(s string) string {
	if strings.ContainsAny(s, `,"`) {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
