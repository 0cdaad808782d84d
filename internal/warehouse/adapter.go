package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adlytics/funnel-api/internal/config"

	_ "github.com/lib/pq"                  // PostgreSQL driver
	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver
)

// Dialect identifies the SQL flavor the adapter talks to. The query builder
// uses it to pick placeholder style and array binding.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSnowflake
)

// Adapter executes parameterized read-only queries against the analytics
// warehouse. It is stateless across requests; the only shared resource is
// the bounded connection pool inside *sql.DB.
type Adapter struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the warehouse described by cfg and applies pool limits.
// The connection is opened lazily; call Ping to verify reachability.
func Open(cfg config.WarehouseConfig) (*Adapter, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case "postgres", "":
		dialect = DialectPostgres
		db, err = sql.Open("postgres", postgresDSN(cfg))
	case "snowflake":
		dialect = DialectSnowflake
		db, err = sql.Open("snowflake", snowflakeDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open warehouse (%s): %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	return &Adapter{db: db, dialect: dialect}, nil
}

// NewWithDB wraps an existing database handle. Used by tests (sqlmock) and
// by callers that manage the pool themselves.
func NewWithDB(db *sql.DB, dialect Dialect) *Adapter {
	return &Adapter{db: db, dialect: dialect}
}

// postgresDSN appends session options that make the connection safe for an
// analytics read path: a connect timeout, a statement timeout, and a
// read-only default so a stray write fails at the server.
func postgresDSN(cfg config.WarehouseConfig) string {
	dsn := cfg.DSN
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "connect_timeout") {
		dsn += sep + "connect_timeout=5"
		sep = "&"
	}
	if !strings.Contains(dsn, "options=") {
		timeoutMS := cfg.QueryTimeoutSeconds * 1000
		dsn += sep + fmt.Sprintf(
			"options=-c%%20statement_timeout%%3D%d%%20-c%%20default_transaction_read_only%%3Don", timeoutMS)
	}
	return dsn
}

// snowflakeDSN assembles user:password@account/database/schema?warehouse=xxx
// from the discrete config fields, unless an explicit DSN is set.
func snowflakeDSN(cfg config.WarehouseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s", cfg.User, cfg.Password, cfg.Account, cfg.Database, cfg.Schema)
	if cfg.WarehouseName != "" {
		dsn += "?warehouse=" + cfg.WarehouseName
	}
	return dsn
}

// Dialect returns the SQL dialect of the underlying warehouse.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// Query executes a parameterized SELECT and returns its rows. Any statement
// that is not SELECT or WITH ... SELECT is rejected with ErrNotReadOnly.
func (a *Adapter) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if !isReadOnly(query) {
		return nil, fmt.Errorf("%w: %.40q", ErrNotReadOnly, query)
	}
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// QueryRow executes a parameterized single-row SELECT. Scan errors on the
// returned row still need classify by the caller via ScanErr.
func (a *Adapter) QueryRow(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	if !isReadOnly(query) {
		return nil, fmt.Errorf("%w: %.40q", ErrNotReadOnly, query)
	}
	return a.db.QueryRowContext(ctx, query, args...), nil
}

// ScanErr classifies an error returned from Row.Scan or Rows.Err.
func ScanErr(err error) error {
	if err == nil || err == sql.ErrNoRows {
		return err
	}
	return classify(err)
}

// Ping verifies warehouse reachability.
func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close closes the underlying pool.
func (a *Adapter) Close() error { return a.db.Close() }

// isReadOnly accepts SELECT and WITH ... SELECT statements only. Comments
// are not stripped: queries are authored in this repository, not by users,
// so a leading comment is itself a bug.
func isReadOnly(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "SELECT") || strings.HasPrefix(q, "WITH")
}
