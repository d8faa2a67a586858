package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const peopleCSV = `"name","age","active","city"
Ana,31,true,"Lisbon, PT"
Bo,,FALSE,Porto
Cy,27.5,false,
`

func TestParseTypesAndQuoting(t *testing.T) {
	ds, err := parser.Parse("people.csv", peopleCSV)
	require.NoError(t, err)

	assert.Equal(t, "people.csv", ds.Name)
	assert.Equal(t, []string{"name", "age", "active", "city"}, ds.Columns)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, dataset.Text("Ana"), ds.Value(0, "name"))
	assert.Equal(t, dataset.Number(31), ds.Value(0, "age"))
	assert.Equal(t, dataset.Bool(true), ds.Value(0, "active"))
	assert.Equal(t, dataset.Text("Lisbon, PT"), ds.Value(0, "city"))
	assert.True(t, ds.Value(1, "age").IsNull())
	assert.Equal(t, dataset.Bool(false), ds.Value(1, "active"))
	assert.True(t, ds.Value(2, "city").IsNull())
}

func TestParseIsIdempotent(t *testing.T) {
	a, err := parser.Parse("p.csv", peopleCSV)
	require.NoError(t, err)
	b, err := parser.Parse("p.csv", peopleCSV)
	require.NoError(t, err)
	assert.Equal(t, a.Columns, b.Columns)
	assert.Equal(t, a.Records, b.Records)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseSkipsMismatchedRows(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := parser.New(parser.WithLogger(zap.New(core)))

	res, err := p.Parse("x.csv", "a,b,c\n1,2\n1,2,3\n4,5,6,7\n")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, []parser.RowShapeMismatch{
		{Line: 2, Got: 2, Want: 3},
		{Line: 4, Got: 4, Want: 3},
	}, res.Skipped)
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "row 2 has 2 columns, expected 3", res.Skipped[0].String())
}

func TestParseDropsBlankRows(t *testing.T) {
	res, err := parser.New().Parse("x.csv", "a,b\n,\n\n1,2\n\"\",\"\"\n")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, 2, res.BlankRows)
	assert.Equal(t, 4, res.DataLines)
}

func TestParseHandlesCRLF(t *testing.T) {
	ds, err := parser.Parse("x.csv", "a,b\r\n1,x\r\n2,y\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns)
	assert.Equal(t, dataset.Text("y"), ds.Value(1, "b"))
}

func TestParseHeaderEdgeCases(t *testing.T) {
	ds, err := parser.Parse("x.csv", "id,,id\n1,2,3\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "column_2"}, ds.Columns)
	assert.Equal(t, dataset.Number(3), ds.Value(0, "id"), "last duplicate wins")
	assert.Equal(t, dataset.Number(2), ds.Value(0, "column_2"))
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", parser.ErrEmptyFile},
		{"header only", "a,b,c\n\n  \n", parser.ErrEmptyFile},
		{"all mismatched", "a,b,c\n1,2\n3,4\n", parser.ErrNoValidRows},
		{"all blank", "a,b\n,\n , \n", parser.ErrNoValidRows},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ds, err := parser.Parse("x.csv", c.in)
			assert.Nil(t, ds)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
}

func TestValidateFile(t *testing.T) {
	var ife *parser.InvalidFormatError

	err := parser.ValidateFile("data.txt", 10, 0)
	require.ErrorAs(t, err, &ife)
	assert.Contains(t, ife.Reason, ".csv extension required")

	err = parser.ValidateFile("DATA.CSV", 0, 0)
	require.ErrorAs(t, err, &ife)
	assert.Contains(t, ife.Reason, "empty")

	err = parser.ValidateFile("big.csv", parser.DefaultMaxBytes+1, 0)
	require.ErrorAs(t, err, &ife)
	assert.True(t, ife.TooLarge)
	assert.Contains(t, err.Error(), "10 MB")

	assert.NoError(t, parser.ValidateFile("ok.csv", 1024, 0))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", parser.FormatSize(0))
	assert.Equal(t, "512 Bytes", parser.FormatSize(512))
	assert.Equal(t, "1.5 KB", parser.FormatSize(1536))
	assert.Equal(t, "10 MB", parser.FormatSize(10*1024*1024))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "hop_harvest.csv")
	content := "date,plot,alpha_acids,moisture\n" +
		"2024-08-10,A1,12.5,74\n" +
		"2024-08-12,A1,11.8,71\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	res, err := parser.New().ParseFile(p, 0)
	require.NoError(t, err)
	assert.Equal(t, "hop_harvest.csv", res.Dataset.Name)
	assert.Equal(t, []float64{12.5, 11.8}, res.Dataset.Numbers("alpha_acids"))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte(strings.Repeat("x", 10)), 0o644))
	_, err = parser.New().ParseFile(txt, 0)
	var ife *parser.InvalidFormatError
	assert.ErrorAs(t, err, &ife)
}
