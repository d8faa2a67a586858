package parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// SplitLine tokenizes one CSV line. Commas inside double quotes do not split,
// a doubled quote inside quotes yields a literal quote, and every field is
// trimmed of surrounding whitespace.
func SplitLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// stripQuotes removes at most one leading and one trailing literal quote.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// Coerce converts a raw field into a typed cell: empty is null, true/false
// (any case) is boolean, a finite number is numeric, anything else is text.
func Coerce(raw string) dataset.Value {
	v := stripQuotes(raw)
	if v == "" {
		return dataset.Null()
	}
	switch strings.ToLower(v) {
	case "true":
		return dataset.Bool(true)
	case "false":
		return dataset.Bool(false)
	}
	if f, ok := parseNumber(v); ok {
		return dataset.Number(f)
	}
	return dataset.Text(v)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}
	if base := radixPrefix(s); base != 0 {
		return parseRadix(s[2:], base)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// radixPrefix reports the base of an unsigned 0x, 0o or 0b literal, or 0.
func radixPrefix(s string) int {
	if len(s) < 3 || s[0] != '0' {
		return 0
	}
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// parseRadix parses unsigned integer digits of any length in base.
func parseRadix(digits string, base int) (float64, bool) {
	if digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
