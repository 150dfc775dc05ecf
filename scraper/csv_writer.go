// scraper/csv_writer.go
package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gewnthar/airquality/models"
	"github.com/gewnthar/airquality/utils"
	"github.com/jszwec/csvutil"
)

// mergedRow is the on-disk layout of data/concat/all.csv.
type mergedRow struct {
	Index         int              `csv:"index"`
	Concentration models.NullFloat `csv:"Concentration"`
	DatetimeBegin models.Timestamp `csv:"DatetimeBegin"`
	DatetimeEnd   models.Timestamp `csv:"DatetimeEnd"`
}

// WriteMergedCsv writes the table to path, replacing any previous file. A nil
// table writes only the header.
func WriteMergedCsv(path string, table *models.Table) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	rows := make([]mergedRow, 0, table.Len())
	for i, m := range table.Rows {
		rows = append(rows, mergedRow{
			Index:         i,
			Concentration: m.Concentration,
			DatetimeBegin: m.DatetimeBegin,
			DatetimeEnd:   m.DatetimeEnd,
		})
	}

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	// Encode writes the header with the first row; an empty table still gets one.
	if len(rows) == 0 {
		err = enc.EncodeHeader(mergedRow{})
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return fmt.Errorf("failed to encode merged table to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}
