// Package all wires the built-in storage backends into the storage factory.
//
// Importing it for side effects registers these kinds:
//
//   - "postgres" (dataprep/internal/storage/postgres)
//   - "sqlite"   (dataprep/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "dataprep/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "out/wine.db", Table: "reviews"})
package all

import (
	_ "dataprep/internal/storage/postgres"
	_ "dataprep/internal/storage/sqlite"
)
