package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func TestSources_EmbeddedTreesArePaired(t *testing.T) {
	sources, err := Sources(nil)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	for _, source := range sources {
		if len(source.Migrations) == 0 {
			t.Fatalf("expected %s migrations", source.Dialect)
		}
		first := source.Migrations[0]
		if first.Version != 1 || first.Name != "verify_delivery_attempts" {
			t.Fatalf("unexpected first %s migration %#v", source.Dialect, first)
		}
		if first.Up != "00001_verify_delivery_attempts.up.sql" || first.Down != "00001_verify_delivery_attempts.down.sql" {
			t.Fatalf("unexpected %s file pair %#v", source.Dialect, first)
		}
	}
	if sources[1].Path != "data/sql/migrations/sqlite" {
		t.Fatalf("unexpected sqlite path %q", sources[1].Path)
	}
}

func TestSources_CustomRoot(t *testing.T) {
	root := fstest.MapFS{
		"00002_second.up.sql":         {Data: []byte("SELECT 2;")},
		"00002_second.down.sql":       {Data: []byte("SELECT 2;")},
		"00001_first.up.sql":          {Data: []byte("SELECT 1;")},
		"00001_first.down.sql":        {Data: []byte("SELECT 1;")},
		"README.md":                   {Data: []byte("notes")},
		"sqlite/00001_first.up.sql":   {Data: []byte("SELECT 1;")},
		"sqlite/00001_first.down.sql": {Data: []byte("SELECT 1;")},
	}
	source, err := SourceFor("postgresql", root)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if source.Path != "." || len(source.Migrations) != 2 {
		t.Fatalf("unexpected source %#v", source)
	}
	if source.Migrations[0].Version != 1 || source.Migrations[1].Version != 2 {
		t.Fatalf("expected version order, got %#v", source.Migrations)
	}
}

func TestSources_Rejects(t *testing.T) {
	tests := []struct {
		name string
		root fstest.MapFS
	}{
		{
			name: "no migrations",
			root: fstest.MapFS{"README.md": {Data: []byte("nothing here")}},
		},
		{
			name: "missing down file",
			root: fstest.MapFS{
				"00001_first.up.sql":          {Data: []byte("SELECT 1;")},
				"sqlite/00001_first.up.sql":   {Data: []byte("SELECT 1;")},
				"sqlite/00001_first.down.sql": {Data: []byte("SELECT 1;")},
			},
		},
		{
			name: "invalid version",
			root: fstest.MapFS{
				"first.up.sql":   {Data: []byte("SELECT 1;")},
				"first.down.sql": {Data: []byte("SELECT 1;")},
			},
		},
		{
			name: "missing sqlite tree",
			root: fstest.MapFS{
				"00001_first.up.sql":   {Data: []byte("SELECT 1;")},
				"00001_first.down.sql": {Data: []byte("SELECT 1;")},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Sources(tc.root); err == nil {
				t.Fatalf("expected %s to be rejected", tc.name)
			}
		})
	}
}

func TestNormalizeDialect(t *testing.T) {
	tests := map[string]string{
		"sqlite3":    DialectSQLite,
		" SQLite ":   DialectSQLite,
		"postgresql": DialectPostgres,
		"pg":         DialectPostgres,
		"mysql":      "",
		"":           "",
	}
	for input, want := range tests {
		if got := NormalizeDialect(input); got != want {
			t.Fatalf("NormalizeDialect(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRegister_SelectsDialects(t *testing.T) {
	var calls []string
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect+"/"+label)
		return nil
	}, WithDialects("sqlite3", "sqlite", "unknown"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != "sqlite/"+DefaultSourceLabel {
		t.Fatalf("expected one sqlite registration, got %#v", calls)
	}
	if len(reg.Sources) != 1 || reg.Sources[0].Dialect != DialectSQLite {
		t.Fatalf("unexpected registered sources %#v", reg.Sources)
	}
}

func TestRegister_DefaultsToBothDialects(t *testing.T) {
	var dialects []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		if label != "host-app" {
			return fmt.Errorf("unexpected label %q", label)
		}
		dialects = append(dialects, dialect)
		return nil
	}, WithSourceLabel(" host-app "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(dialects) != 2 || dialects[0] != DialectPostgres || dialects[1] != DialectSQLite {
		t.Fatalf("expected postgres then sqlite, got %#v", dialects)
	}
}

func TestRegister_Errors(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register function to fail")
	}

	registerErr := errors.New("migrator closed")
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return registerErr
	})
	if !errors.Is(err, registerErr) {
		t.Fatalf("expected register error to be wrapped, got %v", err)
	}
}

func TestApply_SQLiteDeliveryAttempts(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:migrations-apply-%d?mode=memory&cache=shared", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := Apply(ctx, db, "sqlite3"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	insert := `INSERT INTO verify_delivery_attempts (id, attribute, status) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "a-1", "email", "success"); err != nil {
		t.Fatalf("insert success row: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "a-2", "email", "pending"); err == nil {
		t.Fatalf("expected status check constraint to reject pending")
	}

	source, err := SourceFor(DialectSQLite, nil)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	down, err := fs.ReadFile(source.FS, source.Migrations[0].Down)
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	if _, err := db.ExecContext(ctx, string(down)); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}
	var count int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"verify_delivery_attempts",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected verify_delivery_attempts to be dropped")
	}
}

func TestApply_Errors(t *testing.T) {
	if err := Apply(context.Background(), nil, DialectSQLite); err == nil {
		t.Fatalf("expected nil database to fail")
	}
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := Apply(context.Background(), db, "mysql"); err == nil {
		t.Fatalf("expected unsupported dialect to fail")
	}
}
