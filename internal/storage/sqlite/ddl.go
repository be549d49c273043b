package sqlite

import (
	"context"

	"dataprep/internal/ddl"
	"dataprep/internal/storage"
)

// Dialect renders DDL for SQLite: numbers are REAL, everything else TEXT.
var Dialect = ddl.Dialect{Name: "sqlite ddl", MapType: MapType}

// MapType maps a storage-neutral type to a SQLite column type.
func MapType(t ddl.Type) string {
	if t == ddl.Number {
		return "REAL"
	}
	return "TEXT"
}

// EnsureTable creates def's table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	stmt, err := ddl.BuildCreateTableSQL(def, Dialect)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
