// Package analysis inspects populations and writes tab separated summaries
// consumed by the calibration notebooks.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// writeTable writes a header and rows as TSV. A ".gz" path is compressed.
func writeTable(path string, header []string, rows [][]string) (err error) {
	w, err := matsim.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header of %s: %w", path, err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+1, path, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// table is a delimited file with a header row, addressed by column name.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string, comma rune) (*table, error) {
	r, err := matsim.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[name] = i
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) require(names ...string) error {
	for _, n := range names {
		if _, ok := t.columns[n]; !ok {
			return fmt.Errorf("missing column %q", n)
		}
	}
	return nil
}

func (t *table) get(row []string, name string) string {
	i := t.columns[name]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) point(row []string, xCol, yCol string) (orb.Point, error) {
	x, err := strconv.ParseFloat(t.get(row, xCol), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing %s: %w", xCol, err)
	}
	y, err := strconv.ParseFloat(t.get(row, yCol), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing %s: %w", yCol, err)
	}
	return orb.Point{x, y}, nil
}

func formatFloat(v float64) string { return matsim.FormatFloat(v) }
