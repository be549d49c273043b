package postgres

import (
	"context"

	"dataprep/internal/ddl"
	"dataprep/internal/storage"
)

// Dialect renders DDL for Postgres.
var Dialect = ddl.Dialect{Name: "postgres ddl", MapType: MapType}

// MapType maps a storage-neutral type to a Postgres column type.
func MapType(t ddl.Type) string {
	if t == ddl.Number {
		return "DOUBLE PRECISION"
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
