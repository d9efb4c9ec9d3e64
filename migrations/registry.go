// Package migrations exposes the embedded delivery attempt migrations per SQL
// dialect and registers them with a host migrator.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"strconv"
	"strings"

	verify "github.com/goliatone/go-verify"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultSourceLabel = "go-verify"

	rootPath   = "data/sql/migrations"
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration is one versioned up/down pair.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Source is the migration tree of a single dialect.
type Source struct {
	Dialect    string
	Path       string
	FS         fs.FS
	Migrations []Migration
}

type Registration struct {
	SourceLabel string
	Dialects    []string
	Sources     []Source
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*registerConfig)

type registerConfig struct {
	label    string
	dialects []string
	root     fs.FS
}

func WithSourceLabel(label string) Option {
	return func(c *registerConfig) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			c.label = trimmed
		}
	}
}

// WithDialects limits registration to the named dialects. Driver names such as
// sqlite3 or postgresql are accepted.
func WithDialects(dialects ...string) Option {
	return func(c *registerConfig) {
		next := make([]string, 0, len(dialects))
		for _, dialect := range dialects {
			if normalized := NormalizeDialect(dialect); normalized != "" && !slices.Contains(next, normalized) {
				next = append(next, normalized)
			}
		}
		if len(next) > 0 {
			c.dialects = next
		}
	}
}

// WithRoot replaces the embedded migration tree.
func WithRoot(root fs.FS) Option {
	return func(c *registerConfig) {
		if root != nil {
			c.root = root
		}
	}
}

// NormalizeDialect maps driver and dialect aliases to DialectPostgres or
// DialectSQLite. Unknown values return "".
func NormalizeDialect(value string) string {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "sqlite", "sqlite3":
		return DialectSQLite
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres
	default:
		return ""
	}
}

// Sources loads the postgres tree and its sqlite subdirectory from root, or
// from the embedded migrations when root is nil.
func Sources(root fs.FS) ([]Source, error) {
	if root == nil {
		root = verify.GetMigrationsFS()
	}
	base, basePath, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite tree: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: joinPath(basePath, "sqlite"), FS: sqliteFS},
	}
	for i := range sources {
		migrations, err := scan(sources[i].FS)
		if err != nil {
			return nil, fmt.Errorf("migrations: %s %q: %w", sources[i].Dialect, sources[i].Path, err)
		}
		sources[i].Migrations = migrations
	}
	return sources, nil
}

// SourceFor returns the source of a single dialect.
func SourceFor(dialect string, root fs.FS) (Source, error) {
	normalized := NormalizeDialect(dialect)
	if normalized == "" {
		return Source{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	sources, err := Sources(root)
	if err != nil {
		return Source{}, err
	}
	for _, source := range sources {
		if source.Dialect == normalized {
			return source, nil
		}
	}
	return Source{}, fmt.Errorf("migrations: no source for %s", normalized)
}

// Register hands each selected dialect tree to registerFn, postgres first.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	cfg := registerConfig{
		label:    DefaultSourceLabel,
		dialects: []string{DialectPostgres, DialectSQLite},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	reg := Registration{SourceLabel: cfg.label, Dialects: cfg.dialects}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	sources, err := Sources(cfg.root)
	if err != nil {
		return reg, err
	}
	for _, source := range sources {
		if !slices.Contains(cfg.dialects, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source.Dialect, reg.SourceLabel, source.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
		reg.Sources = append(reg.Sources, source)
	}
	return reg, nil
}

// Execer is satisfied by *sql.DB, *sql.Tx and *bun.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply runs every up migration of the dialect in version order. It does not
// track applied versions; hosts with a migrator should use Register instead.
func Apply(ctx context.Context, db Execer, dialect string, opts ...Option) error {
	if db == nil {
		return fmt.Errorf("migrations: database is required")
	}
	cfg := registerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	source, err := SourceFor(dialect, cfg.root)
	if err != nil {
		return err
	}
	for _, migration := range source.Migrations {
		content, err := fs.ReadFile(source.FS, migration.Up)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", migration.Up, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("migrations: apply %05d_%s: %w", migration.Version, migration.Name, err)
		}
	}
	return nil
}

// scan pairs NNNNN_name.up.sql with its .down.sql file.
func scan(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		var stem string
		var up bool
		switch {
		case strings.HasSuffix(name, upSuffix):
			stem, up = strings.TrimSuffix(name, upSuffix), true
		case strings.HasSuffix(name, downSuffix):
			stem = strings.TrimSuffix(name, downSuffix)
		default:
			continue
		}
		version, label, err := parseStem(stem)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		migration, ok := byVersion[version]
		if !ok {
			migration = &Migration{Version: version, Name: label}
			byVersion[version] = migration
		}
		if migration.Name != label {
			return nil, fmt.Errorf("version %d has conflicting names %q and %q", version, migration.Name, label)
		}
		if up {
			migration.Up = name
		} else {
			migration.Down = name
		}
	}
	if len(byVersion) == 0 {
		return nil, fmt.Errorf("no *.up.sql files")
	}

	out := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		if migration.Up == "" || migration.Down == "" {
			return nil, fmt.Errorf("version %d (%s) is missing its up or down file", migration.Version, migration.Name)
		}
		out = append(out, *migration)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func parseStem(stem string) (int, string, error) {
	prefix, label, ok := strings.Cut(stem, "_")
	if !ok || label == "" {
		return 0, "", fmt.Errorf("expected NNNNN_name")
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("invalid version %q", prefix)
	}
	return version, label, nil
}

func resolveRoot(root fs.FS) (fs.FS, string, error) {
	if sub, err := fs.Sub(root, rootPath); err == nil {
		if _, statErr := fs.Stat(sub, "."); statErr == nil {
			if matches, _ := fs.Glob(sub, "*"+upSuffix); len(matches) > 0 {
				return sub, rootPath, nil
			}
		}
	}
	if matches, _ := fs.Glob(root, "*"+upSuffix); len(matches) > 0 {
		return root, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: %s not found", rootPath)
}

func joinPath(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + suffix
}
