package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is returned when the input lacks a header plus at least one data line.
	ErrEmptyFile = errors.New("CSV must have at least a header row and one data row")
	// ErrNoValidRows is returned when every data line was skipped or blank.
	ErrNoValidRows = errors.New("no valid data rows found in CSV file")
)

// InvalidFormatError rejects an upload before parsing (extension, size).
type InvalidFormatError struct {
	Name   string
	Size   int64
	Reason string
	// TooLarge is set when the size limit was exceeded.
	TooLarge bool
}

func (e *InvalidFormatError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid file %s: %s", e.Name, e.Reason)
	}
	return "invalid file: " + e.Reason
}

// RowShapeMismatch describes a data line whose field count differs from the header.
// It is a diagnostic, never returned as an error.
type RowShapeMismatch struct {
	Line int `json:"line"`
	Got  int `json:"got"`
	Want int `json:"want"`
}

func (m RowShapeMismatch) String() string {
	return fmt.Sprintf("row %d has %d columns, expected %d", m.Line, m.Got, m.Want)
}
