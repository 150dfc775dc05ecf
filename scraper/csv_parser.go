// scraper/csv_parser.go
package scraper

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gewnthar/airquality/models"
	"github.com/jszwec/csvutil"
)

// Columns every input file must carry. DatetimeEnd is read when present.
var requiredColumns = []string{"Concentration", "DatetimeBegin"}

// SchemaError means a file lacks a column the merge cannot do without.
type SchemaError struct {
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("CSV is missing required column %q", e.Column)
	}
	return fmt.Sprintf("CSV %s is missing required column %q", e.Path, e.Column)
}

// ParseMeasurementsCsv decodes an EEA time-series CSV into measurements.
// Only Concentration, DatetimeBegin and DatetimeEnd are kept; cells that do
// not parse, and cells absent from a short row, become missing values rather
// than errors. Header names are matched after trimming surrounding spaces.
func ParseMeasurementsCsv(reader io.Reader) ([]models.Measurement, error) {
	br := bufio.NewReader(reader)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	raw, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Column: requiredColumns[0]}
		}
		return nil, fmt.Errorf("failed to read measurement CSV header: %w", err)
	}
	header := make([]string, len(raw))
	present := make(map[string]bool, len(raw))
	for i, h := range raw {
		header[i] = strings.TrimSpace(h)
		present[header[i]] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return nil, &SchemaError{Column: col}
		}
	}

	// The decoder matches on the trimmed header, the same names checked above.
	decoder, err := csvutil.NewDecoder(&paddedReader{r: r, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for measurements: %w", err)
	}

	var rows []models.Measurement
	for {
		var m models.Measurement
		if err := decoder.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode measurement CSV data: %w", err)
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// paddedReader fills short records with empty cells so an absent trailing
// value decodes as missing. Longer records pass through and fail decoding.
type paddedReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	record, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	for len(record) < p.width {
		record = append(record, "")
	}
	return record, nil
}

// ParseMeasurementsFile opens and parses one CSV file.
func ParseMeasurementsFile(path string) ([]models.Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseMeasurementsCsv(f)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			se.Path = path
			return nil, se
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

// MergeCsvFiles concatenates the given files in lexicographic path order.
// The result is re-indexed from zero. Path order is not chronological; the
// table is only time-ordered after services.CleanTable. Any file that fails
// aborts the whole merge.
func MergeCsvFiles(name string, paths []string, logger *slog.Logger) (*models.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	table := &models.Table{Name: name}
	for _, p := range sorted {
		rows, err := ParseMeasurementsFile(p)
		if err != nil {
			return nil, err
		}
		logger.Debug("parsed CSV", "path", p, "rows", len(rows))
		table.Rows = append(table.Rows, rows...)
	}
	logger.Info("merged CSV files", "files", len(sorted), "rows", table.Len())
	return table, nil
}

// FindCsvFiles lists every *.csv below root, sorted by path. A missing root
// yields no files.
func FindCsvFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
