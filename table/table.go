// Package table reads and writes benchmark results tables: one CSV row
// per matrix size under the header Language,Matrix_Size,Time_ms,Memory_MB.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrIOFailure is returned when the output directory or file cannot
	// be created, written, or read.
	ErrIOFailure = errors.New("results table io failure")
	// ErrSchema is returned when a table does not follow the expected
	// header or row format.
	ErrSchema = errors.New("malformed results table")
)

// Header is the exact column header of every results table.
var Header = []string{"Language", "Matrix_Size", "Time_ms", "Memory_MB"}

// Summary is one table row: the averaged metrics of one matrix size.
type Summary struct {
	Language   string  `json:"language"`
	MatrixSize int     `json:"matrix_size"`
	TimeMs     float64 `json:"time_ms"`
	MemoryMB   float64 `json:"memory_mb"`
}

// Encode writes the header and one row per summary, in the given order.
func Encode(w io.Writer, rows []Summary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Language,
			strconv.Itoa(r.MatrixSize),
			strconv.FormatFloat(r.TimeMs, 'f', 3, 64),
			strconv.FormatFloat(r.MemoryMB, 'f', 2, 64),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s/%d: %w",
				r.Language, r.MatrixSize, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteFile replaces the table at path with rows. The parent directory is
// created if missing. Rows are written to a temporary file that is renamed
// over path, so path holds either the previous table or the complete new
// one.
func WriteFile(path string, rows []Summary) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %w", ErrIOFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIOFailure, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, rows); err != nil {
		tmp.Close()

		return fmt.Errorf("%w: encode %s: %w", ErrIOFailure, path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIOFailure, tmp.Name(), err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrIOFailure, tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", ErrIOFailure, path, err)
	}

	return nil
}

// Decode parses a table. Values may use any decimal precision.
func Decode(r io.Reader) ([]Summary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrSchema, err)
	}

	// Some writers emit a UTF-8 BOM.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q",
				ErrSchema, i, header[i], col)
		}
	}

	var rows []Summary

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchema, err)
		}

		row, err := parseRow(record)
		if err != nil {
			line, _ := cr.FieldPos(0)

			return nil, fmt.Errorf("%w: line %d: %w", ErrSchema, line, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ReadFile opens and decodes the table at path.
func ReadFile(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIOFailure, path, err)
	}
	defer f.Close()

	rows, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return rows, nil
}

// ReadFiles reads every table in paths and returns the union of their
// rows, in file order.
func ReadFiles(paths ...string) ([]Summary, error) {
	tables := make([][]Summary, 0, len(paths))

	for _, p := range paths {
		rows, err := ReadFile(p)
		if err != nil {
			return nil, err
		}

		tables = append(tables, rows)
	}

	return Union(tables...), nil
}

// Union concatenates tables. Language is the discriminant between rows
// coming from different harnesses.
func Union(tables ...[]Summary) []Summary {
	n := 0
	for _, t := range tables {
		n += len(t)
	}

	out := make([]Summary, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}

	return out
}

func parseRow(record []string) (Summary, error) {
	lang := strings.TrimSpace(record[0])
	if lang == "" {
		return Summary{}, errors.New("empty language")
	}

	size, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return Summary{}, fmt.Errorf("matrix size: %w", err)
	}
	if size <= 0 {
		return Summary{}, fmt.Errorf("matrix size %d is not positive", size)
	}

	timeMs, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return Summary{}, fmt.Errorf("time: %w", err)
	}

	memMB, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return Summary{}, fmt.Errorf("memory: %w", err)
	}

	if err := checkMetric("time", timeMs); err != nil {
		return Summary{}, err
	}
	if err := checkMetric("memory", memMB); err != nil {
		return Summary{}, err
	}

	return Summary{
		Language:   lang,
		MatrixSize: size,
		TimeMs:     timeMs,
		MemoryMB:   memMB,
	}, nil
}

func checkMetric(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s %v is not finite", name, v)
	}
	if v < 0 {
		return fmt.Errorf("%s %v is negative", name, v)
	}

	return nil
}
