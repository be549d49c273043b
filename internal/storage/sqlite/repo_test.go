package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dataprep/internal/ddl"
	"dataprep/internal/storage"
)

func newRepo(t *testing.T, table string) *Repository {
	t.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{
		DSN:   filepath.Join(t.TempDir(), "wine.db"),
		Table: table,
	})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	return r
}

func TestEnsureTableAndCopyFrom(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, "price_by_country")

	def := ddl.TableDef{
		FQN: "price_by_country",
		Columns: []ddl.ColumnDef{
			{Name: "country", Type: ddl.Text, Nullable: true},
			{Name: "mean", Type: ddl.Number, Nullable: true},
		},
	}
	repo := &wrappedRepo{Repository: r}
	if err := EnsureTable(ctx, repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent.
	if err := EnsureTable(ctx, repo, def); err != nil {
		t.Fatalf("EnsureTable twice: %v", err)
	}

	rows := [][]any{{"US", 18.0}, {"Italy", nil}, {"France", 30.5}}
	n, err := r.CopyFrom(ctx, def.Names(), rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted %d, want 3", n)
	}
	if got, err := r.Count(ctx); err != nil || got != 3 {
		t.Fatalf("Count = %d, %v; want 3", got, err)
	}

	var mean float64
	if err := r.db.QueryRowContext(ctx, `SELECT "mean" FROM "price_by_country" WHERE "country" = 'France'`).Scan(&mean); err != nil {
		t.Fatalf("query: %v", err)
	}
	if mean != 30.5 {
		t.Fatalf("mean = %v, want 30.5", mean)
	}
}

func TestCopyFromRollsBackBadBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, "t")
	if err := r.Exec(ctx, `CREATE TABLE "t" ("a" TEXT, "b" REAL)`); err != nil {
		t.Fatal(err)
	}

	_, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"x", 1.0}, {"short"}})
	if err == nil || !strings.Contains(err.Error(), "row length 1 != columns length 2") {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := r.Count(ctx); n != 0 {
		t.Fatalf("partial batch committed: %d rows", n)
	}

	if _, err := r.CopyFrom(ctx, nil, [][]any{{"x"}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if n, err := r.CopyFrom(ctx, []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("empty batch = %d, %v", n, err)
	}
}

func TestNewRepositoryRequiresDSN(t *testing.T) {
	t.Parallel()
	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestRegisteredThroughStorage(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "registered.db")

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: dsn, Table: "reviews"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	def := ddl.TableDef{FQN: "reviews", Columns: []ddl.ColumnDef{{Name: "id", Type: ddl.Number, Nullable: true}}}
	if err := storage.EnsureTable(ctx, "sqlite", repo, def); err != nil {
		t.Fatalf("storage.EnsureTable: %v", err)
	}
	if n, err := repo.CopyFrom(ctx, []string{"id"}, [][]any{{1.0}, {2.0}}); err != nil || n != 2 {
		t.Fatalf("CopyFrom = %d, %v", n, err)
	}
}

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
	)
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "x.db", Table: "events"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "x.db" || gotCfg.Table != "events" {
		t.Fatalf("hook got %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call the close function")
	}
}
