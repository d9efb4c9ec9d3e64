package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a bun database for the sqlite3 or postgres driver.
func OpenDB(driver string, dsn string) (*bun.DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	sqlDB, err := sql.Open(normalizeDriver(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if normalizeDriver(driver) == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

// DialectFor maps a database/sql driver name to its bun dialect.
func DialectFor(driver string) (schema.Dialect, error) {
	switch normalizeDriver(driver) {
	case DriverSQLite:
		return sqlitedialect.New(), nil
	case DriverPostgres:
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// RepositoryFactory builds the attempt store, and its cached reader when a
// cache service is configured, from a persistence client or bun db.
type RepositoryFactory struct {
	db           *bun.DB
	attemptStore *AttemptStore
	cached       *CachedAttemptReader
	cacheService repositorycache.CacheService
}

func NewRepositoryFactory(cacheService repositorycache.CacheService) *RepositoryFactory {
	return &RepositoryFactory{cacheService: cacheService}
}

func NewRepositoryFactoryFromPersistence(
	client *persistence.Client,
	cacheService repositorycache.CacheService,
) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(cacheService)
	if err := factory.Build(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, cacheService repositorycache.CacheService) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(cacheService)
	if err := factory.Build(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) Build(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.attemptStore != nil {
		return nil
	}
	store, err := NewAttemptStore(f.db)
	if err != nil {
		return err
	}
	f.attemptStore = store
	if f.cacheService != nil {
		cached, err := NewCachedAttemptReader(store, f.cacheService)
		if err != nil {
			return err
		}
		f.cached = cached
	}
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) AttemptStore() *AttemptStore {
	if f == nil {
		return nil
	}
	return f.attemptStore
}

// Attempts returns the cached reader when one was built, else the plain store.
func (f *RepositoryFactory) Attempts() AttemptRepository {
	if f == nil {
		return nil
	}
	if f.cached != nil {
		return f.cached
	}
	if f.attemptStore == nil {
		return nil
	}
	return f.attemptStore
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
