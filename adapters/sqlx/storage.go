package sqlx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ratereminder/engine"
)

// Driver names a supported SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver" koanf:"driver" env:"RATEREMINDER_SQL_DRIVER"`
	DSN             string        `json:"dsn" koanf:"dsn" env:"RATEREMINDER_SQL_DSN"`
	MaxOpenConns    int           `json:"max_open_conns" koanf:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" koanf:"conn_max_lifetime"`
}

// DefaultConfig returns defaults for the given driver. The DSN is left for the caller
// except for SQLite, which defaults to a local file.
func DefaultConfig(driver Driver) Config {
	cfg := Config{
		Driver:          driver,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
	if driver == DriverSQLite {
		cfg.DSN = "./data/ratereminder.db"
		// one writer keeps SQLite away from SQLITE_BUSY
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	return cfg
}

// Validate checks the driver and DSN.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return errors.New("dsn cannot be empty")
	}
	return nil
}

const schema = `CREATE TABLE IF NOT EXISTS reminder_values (
	container VARCHAR(191) NOT NULL,
	name VARCHAR(191) NOT NULL,
	value TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (container, name)
)`

// Store implements engine.Backend on a relational database. Each container value is a
// row of reminder_values; Put rewrites a container's rows inside one transaction.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens the database, applies pool settings and creates the table if needed.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sql config: %w", err)
	}
	if cfg.Driver == DriverSQLite && !strings.HasPrefix(cfg.DSN, "file:") && cfg.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}
	db, err := sqlx.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	s := NewWithDB(db, cfg.Driver)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection (useful for testing). No migration is run.
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate creates the reminder_values table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create reminder_values table: %w", err)
	}
	return nil
}

// Driver reports the SQL dialect in use.
func (s *Store) Driver() Driver { return s.driver }

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type valueRow struct {
	Name  string `db:"name"`
	Value string `db:"value"`
}

func (s *Store) Get(ctx context.Context, container string) (map[string]string, bool, error) {
	var rows []valueRow
	q := s.db.Rebind(`SELECT name, value FROM reminder_values WHERE container = ?`)
	if err := s.db.SelectContext(ctx, &rows, q, container); err != nil {
		return nil, false, fmt.Errorf("failed to read container %s: %w", container, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Name] = r.Value
	}
	return values, true, nil
}

// Put replaces the container's rows. Rows are inserted in name order so statements are
// deterministic.
func (s *Store) Put(ctx context.Context, container string, values map[string]string) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reminder_values WHERE container = ?`), container); err != nil {
		return fmt.Errorf("failed to clear container %s: %w", container, err)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	insert := tx.Rebind(`INSERT INTO reminder_values (container, name, value, updated_at) VALUES (?, ?, ?, ?)`)
	now := time.Now().UTC().Unix()
	for _, name := range names {
		if _, err = tx.ExecContext(ctx, insert, container, name, values[name], now); err != nil {
			return fmt.Errorf("failed to write %s.%s: %w", container, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit container %s: %w", container, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, container string) error {
	q := s.db.Rebind(`DELETE FROM reminder_values WHERE container = ?`)
	if _, err := s.db.ExecContext(ctx, q, container); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", container, err)
	}
	return nil
}

var _ engine.Backend = (*Store)(nil)
