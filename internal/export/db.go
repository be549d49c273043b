package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dataprep/internal/config"
	"dataprep/internal/ddl"
	"dataprep/internal/storage"
	"dataprep/pkg/frame"
)

// WriteDB appends t to the database table named in cfg. The index column is
// written only when withIndex is set and the index is named. With
// AutoCreateTable the destination is created from t's schema first. Rows are
// streamed to the backend in batches of cfg.DB.BatchSize.
func WriteDB(ctx context.Context, cfg config.Storage, t *frame.Table, withIndex bool) (rows, batches int64, err error) {
	def, err := ddl.FromTable(t, cfg.DB.Table, withIndex)
	if err != nil {
		return 0, 0, err
	}
	withIndex = withIndex && t.IndexName() != ""

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Kind, DSN: cfg.DB.DSN, Table: cfg.DB.Table})
	if err != nil {
		return 0, 0, err
	}
	defer repo.Close()

	if cfg.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg.Kind, repo, def); err != nil {
			return 0, 0, fmt.Errorf("create table %s: %w", def.FQN, err)
		}
	}

	batchSize := cfg.DB.BatchSize
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	in := make(chan []any, batchSize)
	g.Go(func() error {
		defer close(in)
		for i := range t.Len() {
			vals := record(t, i, withIndex)
			row := make([]any, len(vals))
			for j, v := range vals {
				row[j] = ddl.Convert(def.Columns[j].Type, v)
			}
			select {
			case in <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, batches, err = storage.LoadBatches(gctx, def.Names(), in, batchSize, repo.CopyFrom)
		return err
	})
	if err := g.Wait(); err != nil {
		return rows, batches, err
	}
	return rows, batches, nil
}
