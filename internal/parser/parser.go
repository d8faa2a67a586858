package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"go.uber.org/zap"
)

// Parser turns CSV text into a Dataset. The zero value is not usable; call New.
type Parser struct {
	logger *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes skip diagnostics to l. Logging never changes the result.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Parser with a no-op logger unless one is supplied.
func New(opts ...Option) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is a parsed Dataset plus the diagnostics gathered on the way.
type Result struct {
	Dataset *dataset.Dataset
	// Skipped lists data lines dropped for a field-count mismatch.
	Skipped []RowShapeMismatch
	// BlankRows counts lines that matched the header but had no values.
	BlankRows int
	// DataLines is the number of lines after the header, including empty ones.
	DataLines int
}

// Parse parses text with a silent parser and returns only the Dataset.
func Parse(name, text string) (*dataset.Dataset, error) {
	res, err := New().Parse(name, text)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// Parse tokenizes text line by line. The first line is the header; data lines
// whose field count differs from the header are skipped, and lines whose
// fields are all empty are dropped. No partial Dataset is returned on error.
func (p *Parser) Parse(name, text string) (*Result, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	header := SplitLine(strings.TrimSpace(lines[0]))
	columns, slots := buildSchema(header)

	res := &Result{DataLines: len(lines) - 1}
	records := make([]dataset.Record, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		fields := SplitLine(line)
		if len(fields) != len(header) {
			m := RowShapeMismatch{Line: i + 1, Got: len(fields), Want: len(header)}
			res.Skipped = append(res.Skipped, m)
			p.logger.Warn("skipping row with mismatched column count",
				zap.Int("line", m.Line), zap.Int("got", m.Got), zap.Int("want", m.Want))
			continue
		}
		rec := make(dataset.Record, len(columns))
		hasData := false
		for j, f := range fields {
			v := Coerce(f)
			if !v.IsNull() {
				hasData = true
			}
			rec[slots[j]] = v
		}
		if !hasData {
			res.BlankRows++
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoValidRows
	}
	p.logger.Debug("parsed csv",
		zap.String("name", name),
		zap.Int("rows", len(records)),
		zap.Int("lines", res.DataLines),
		zap.Int("skipped", len(res.Skipped)))
	res.Dataset = dataset.New(name, columns, records)
	return res, nil
}

// buildSchema strips header quotes, names empty headers by position and maps
// each header field to a column slot. A repeated name reuses its first slot.
func buildSchema(header []string) (columns []string, slots []int) {
	seen := make(map[string]int, len(header))
	slots = make([]int, len(header))
	for i, h := range header {
		name := stripQuotes(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if at, ok := seen[name]; ok {
			slots[i] = at
			continue
		}
		seen[name] = len(columns)
		slots[i] = len(columns)
		columns = append(columns, name)
	}
	return columns, slots
}

// ParseFile validates and parses a CSV file on disk.
func (p *Parser) ParseFile(path string, maxBytes int64) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	name := filepath.Base(path)
	if err := ValidateFile(name, info.Size(), maxBytes); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.Parse(name, string(data))
}
