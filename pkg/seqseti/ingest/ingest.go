// Package ingest loads trigger tables from CSV or XLSX files and slices them
// into segments.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// Columns names the header fields a trigger is read from. Time is required;
// the angle columns are read when present and default to zero otherwise.
// Every listed parameter column is required.
type Columns struct {
	Time   string
	Phi    string
	Theta  string
	RA     string
	Dec    string
	Params []string
}

// DefaultColumns matches the trigger exports the search was built around.
func DefaultColumns() Columns {
	return Columns{
		Time:  "time0",
		Phi:   "phi0",
		Theta: "theta0",
		RA:    "phi2",
		Dec:   "theta2",
	}
}

// ReadCSV parses a CSV stream with a header row.
func ReadCSV(r io.Reader, cols Columns) ([]trigger.Trigger, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseRows(rows, cols)
}

// ReadXLSX parses sheet of an Excel workbook. An empty sheet name selects the
// first sheet.
func ReadXLSX(path, sheet string, cols Columns) ([]trigger.Trigger, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return parseRows(rows, cols)
}

// Load reads path as XLSX when the extension says so, CSV otherwise.
func Load(path string, cols Columns) ([]trigger.Trigger, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, "", cols)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open trigger file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file, cols)
	}
}

type layout struct {
	time, phi, theta, ra, dec int
	params                    map[string]int
}

func parseRows(rows [][]string, cols Columns) ([]trigger.Trigger, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty input, no header row", ErrMissingColumn)
	}
	l, err := resolve(rows[0], cols)
	if err != nil {
		return nil, err
	}

	out := make([]trigger.Trigger, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := n + 2
		tm, err := cell(row, l.time, line, cols.Time)
		if err != nil {
			return nil, err
		}
		var angles [4]float64
		for k, idx := range []int{l.phi, l.theta, l.ra, l.dec} {
			if idx < 0 {
				continue
			}
			if angles[k], err = cell(row, idx, line, "angle"); err != nil {
				return nil, err
			}
		}
		var params map[string]float64
		if len(l.params) > 0 {
			params = make(map[string]float64, len(l.params))
			for name, idx := range l.params {
				if params[name], err = cell(row, idx, line, name); err != nil {
					return nil, err
				}
			}
		}
		out = append(out, trigger.New(tm, angles[0], angles[1], angles[2], angles[3], params))
	}
	return out, nil
}

func resolve(header []string, cols Columns) (layout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	l := layout{
		time:  lookup(cols.Time),
		phi:   lookup(cols.Phi),
		theta: lookup(cols.Theta),
		ra:    lookup(cols.RA),
		dec:   lookup(cols.Dec),
	}
	if l.time < 0 {
		return l, fmt.Errorf("%w: time column %q", ErrMissingColumn, cols.Time)
	}
	if len(cols.Params) > 0 {
		l.params = make(map[string]int, len(cols.Params))
		for _, p := range cols.Params {
			i := lookup(p)
			if i < 0 {
				return l, fmt.Errorf("%w: parameter column %q", ErrMissingColumn, p)
			}
			l.params[p] = i
		}
	}
	return l, nil
}

func cell(row []string, idx, line int, name string) (float64, error) {
	if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return 0, fmt.Errorf("line %d: empty %s value", line, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s value: %w", line, name, err)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
