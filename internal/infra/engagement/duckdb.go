package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

const sourceDuckDB = "duckdb"

// OpenDuckDB opens a DuckDB database at path ("" for in-memory). When
// importFile names a CSV or Parquet file, its rows replace the table.
func OpenDuckDB(ctx context.Context, path, importFile, table string) (*SQLRepository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo, err := newSQLRepository(db, table, sourceDuckDB)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if importFile != "" {
		if err := importSamples(ctx, db, importFile, table); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	slog.InfoContext(ctx, "engagement source opened",
		slog.String("source", sourceDuckDB),
		slog.String("path", path),
		slog.String("import", importFile),
		slog.String("table", table),
	)

	return repo, nil
}

func importSamples(ctx context.Context, db *sql.DB, importFile, table string) error {
	var reader string
	switch strings.ToLower(filepath.Ext(importFile)) {
	case ".csv":
		reader = "read_csv_auto"
	case ".parquet":
		reader = "read_parquet"
	default:
		return fmt.Errorf("%w: %s", ErrInvalidImport, importFile)
	}

	quoted := "'" + strings.ReplaceAll(importFile, "'", "''") + "'"
	stmt := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS SELECT * FROM %s(%s)`, table, reader, quoted)

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to import %s: %w", importFile, err)
	}

	return nil
}
