package parser

import (
	"strconv"
	"strings"
)

// DefaultMaxBytes is the upload ceiling applied when no limit is configured.
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// ValidateFile checks the upload constraints: a .csv name, a non-zero size
// and a size no larger than maxBytes (DefaultMaxBytes when maxBytes <= 0).
func ValidateFile(name string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return &InvalidFormatError{Name: name, Size: size, Reason: "please upload a CSV file (.csv extension required)"}
	}
	if size > maxBytes {
		return &InvalidFormatError{Name: name, Size: size, TooLarge: true, Reason: "file size too large, please upload files smaller than " + FormatSize(maxBytes)}
	}
	if size == 0 {
		return &InvalidFormatError{Name: name, Size: size, Reason: "file appears to be empty, please upload a valid CSV file"}
	}
	return nil
}

// FormatSize renders a byte count with binary units, e.g. "10 MB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	f := float64(n)
	i := 0
	for f >= 1024 && i < len(units)-1 {
		f /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(strconv.FormatFloat(f, 'f', 2, 64), "0"), ".")
	return s + " " + units[i]
}
