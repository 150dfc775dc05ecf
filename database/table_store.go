// database/table_store.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Column types per driver. Timestamps are stored as RFC 3339 text so both
// backends round-trip the original offset.
type columnTypes struct {
	index, timestamp, value string
}

var dialects = map[string]columnTypes{
	"sqlite": {index: "INTEGER", timestamp: "TEXT", value: "REAL"},
	"mysql":  {index: "BIGINT", timestamp: "VARCHAR(40)", value: "DOUBLE"},
}

// ExportTable writes table under name, replacing whatever was stored under
// that name before. Failures are logged and reported as false so the caller
// can carry on without the cache.
func ExportTable(cfg config.DatabaseConfig, table *models.Table, name string) bool {
	if err := exportTable(cfg, table, name); err != nil {
		slog.Error("Database: failed to export table", "table", name, "error", err)
		return false
	}
	slog.Info("Database: exported table", "table", name, "rows", table.Len())
	return true
}

func exportTable(cfg config.DatabaseConfig, table *models.Table, name string) error {
	if err := validateTableName(name); err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("no table to export as %s", name)
	}
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	types, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to drop old table %s: %w", name, err)
	}
	create := fmt.Sprintf(
		"CREATE TABLE `%s` (`row_index` %s NOT NULL, `DatetimeBegin` %s NULL, `DatetimeEnd` %s NULL, `Concentration` %s NULL)",
		name, types.index, types.timestamp, types.timestamp, types.value,
	)
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO `%s` (`row_index`, `DatetimeBegin`, `DatetimeEnd`, `Concentration`) VALUES (?, ?, ?, ?)", name))
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement for %s: %w", name, err)
	}
	defer stmt.Close()

	for i, m := range table.Rows {
		if _, err := stmt.Exec(i, timestampArg(m.DatetimeBegin), timestampArg(m.DatetimeEnd), floatArg(m.Concentration)); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for %s: %w", name, err)
	}
	return nil
}

// ImportTable reads back a table written by ExportTable, in row_index order.
// A missing store or table is an error.
func ImportTable(cfg config.DatabaseConfig, name string) (*models.Table, error) {
	if err := validateTableName(name); err != nil {
		return nil, err
	}
	db, err := openExisting(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(
		"SELECT `row_index`, `DatetimeBegin`, `DatetimeEnd`, `Concentration` FROM `%s` ORDER BY `row_index`", name))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	table := &models.Table{Name: name}
	for rows.Next() {
		var (
			idx           int64
			begin, end    sql.NullString
			concentration sql.NullFloat64
		)
		if err := rows.Scan(&idx, &begin, &end, &concentration); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		table.Rows = append(table.Rows, models.Measurement{
			Concentration: nullFloat(concentration),
			DatetimeBegin: nullTimestamp(begin),
			DatetimeEnd:   nullTimestamp(end),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", name, err)
	}

	slog.Info("Database: imported table", "table", name, "rows", table.Len())
	return table, nil
}

func timestampArg(ts models.Timestamp) sql.NullString {
	if !ts.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: ts.Time.Format(time.RFC3339Nano), Valid: true}
}

func floatArg(v models.NullFloat) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Float64, Valid: v.Valid}
}

func nullTimestamp(s sql.NullString) models.Timestamp {
	if !s.Valid {
		return models.Timestamp{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return models.Timestamp{}
	}
	return models.At(t)
}

func nullFloat(v sql.NullFloat64) models.NullFloat {
	if !v.Valid {
		return models.NullFloat{}
	}
	return models.Float(v.Float64)
}
