package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/paramengine/pkg/model"
)

// SQLConfig configures a SQL repository.
type SQLConfig struct {
	// Dialect selects the driver: sqlite, sqlite3 or postgres.
	Dialect Dialect `yaml:"dialect"`

	// DSN is the driver data source name. For sqlite dialects it is the
	// database file path.
	DSN string `yaml:"dsn"`

	// MaxOpenConns limits open connections. sqlite dialects always use one.
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is how long sqlite waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Migrate creates the schema on open.
	Migrate bool `yaml:"migrate"`
}

// DefaultSQLConfig returns a configuration for a local sqlite file.
func DefaultSQLConfig() *SQLConfig {
	return &SQLConfig{
		Dialect:      DialectSQLite,
		DSN:          "data/params.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
		Migrate:      true,
	}
}

// Validate checks the configuration.
func (c *SQLConfig) Validate() error {
	if !c.Dialect.Valid() {
		return fmt.Errorf("unsupported sql dialect %q", c.Dialect)
	}
	if c.DSN == "" {
		return fmt.Errorf("sql dsn is required")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busy timeout must be non-negative")
	}
	return nil
}

// SQL is a repository stored in a relational database. Each entry row holds
// its level values as a JSON array, and entries are read in keyset-paged
// batches ordered by insertion.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// OpenSQL opens a database, applies sqlite pragmas and optionally migrates the
// schema.
func OpenSQL(ctx context.Context, config *SQLConfig, logger *slog.Logger) (*SQL, error) {
	if config == nil {
		config = DefaultSQLConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(string(config.Dialect), config.DSN)
	if err != nil {
		return nil, newStorageError(string(config.Dialect), "open", err)
	}

	if config.Dialect.sqlite() {
		// sqlite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		busy := config.BusyTimeout
		if busy == 0 {
			busy = 5 * time.Second
		}
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			fmt.Sprintf("PRAGMA busy_timeout=%d", busy.Milliseconds()),
			"PRAGMA foreign_keys=ON",
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				db.Close()
				return nil, newStorageError(string(config.Dialect), "pragma", err)
			}
		}
	} else if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := NewSQL(db, config.Dialect, logger)
	if config.Migrate {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewSQL wraps an open database.
func NewSQL(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQL {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQL{
		db:      db,
		dialect: dialect,
		logger:  logger.With("component", "repository.sql", "dialect", string(dialect)),
	}
}

// Migrate creates the tables if they do not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return newStorageError(string(s.dialect), "migrate", err)
		}
	}
	s.logger.Debug("schema ready")
	return nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Load reads the parameter header and levels and returns a loader that pages
// through the entries.
func (s *SQL) Load(ctx context.Context, name string) (*model.ParameterBatch, error) {
	p := &model.Parameter{Name: name}
	err := s.db.QueryRowContext(ctx, s.rebind(queryParameter), name).
		Scan(&p.InputLevels, &p.Nullable, &p.Cacheable, &p.ArraySeparator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, newStorageError(string(s.dialect), "load", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(queryLevels), name)
	if err != nil {
		return nil, newStorageError(string(s.dialect), "load levels", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.Level
		if err := rows.Scan(&l.Name, &l.Type, &l.Matcher, &l.Array, &l.LevelCreator); err != nil {
			return nil, newStorageError(string(s.dialect), "load levels", err)
		}
		p.Levels = append(p.Levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(string(s.dialect), "load levels", err)
	}

	return &model.ParameterBatch{
		Parameter: p,
		Loader:    &sqlLoader{repo: s, parameter: name, more: true},
	}, nil
}

// List returns parameter names in sorted order.
func (s *SQL) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryNames)
	if err != nil {
		return nil, newStorageError(string(s.dialect), "list", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, newStorageError(string(s.dialect), "list", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(string(s.dialect), "list", err)
	}
	return names, nil
}

// Save replaces the parameter in a single transaction.
func (s *SQL) Save(ctx context.Context, p *model.Parameter) (err error) {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStorageError(string(s.dialect), "save", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.deleteTx(ctx, tx, p.Name); err != nil {
		return newStorageError(string(s.dialect), "save", err)
	}

	if _, err = tx.ExecContext(ctx, s.rebind(insertParameter),
		p.Name, p.InputLevels, p.Nullable, p.Cacheable, p.ArraySeparator, time.Now().Unix()); err != nil {
		return newStorageError(string(s.dialect), "save", err)
	}

	for i, l := range p.Levels {
		if _, err = tx.ExecContext(ctx, s.rebind(insertLevel),
			p.Name, i, l.Name, l.Type, l.Matcher, l.Array, l.LevelCreator); err != nil {
			return newStorageError(string(s.dialect), "save levels", err)
		}
	}

	if len(p.Entries) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, s.rebind(insertEntry))
		if err != nil {
			return newStorageError(string(s.dialect), "save entries", err)
		}
		defer stmt.Close()

		for _, e := range p.Entries {
			var levels []byte
			levels, err = json.Marshal(e.Levels)
			if err != nil {
				return newStorageError(string(s.dialect), "save entries", err)
			}
			if _, err = stmt.ExecContext(ctx, p.Name, string(levels)); err != nil {
				return newStorageError(string(s.dialect), "save entries", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return newStorageError(string(s.dialect), "save", err)
	}

	s.logger.Info("saved parameter", "parameter", p.Name, "entries", len(p.Entries))
	return nil
}

// Delete removes the parameter with its levels and entries.
func (s *SQL) Delete(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var res sql.Result
	if _, err = tx.ExecContext(ctx, s.rebind(deleteEntries), name); err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}
	if _, err = tx.ExecContext(ctx, s.rebind(deleteLevels), name); err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}
	if res, err = tx.ExecContext(ctx, s.rebind(deleteParameter), name); err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}
	if n == 0 {
		err = notFound(name)
		return err
	}

	if err = tx.Commit(); err != nil {
		return newStorageError(string(s.dialect), "delete", err)
	}
	return nil
}

func (s *SQL) deleteTx(ctx context.Context, tx *sql.Tx, name string) error {
	for _, q := range []string{deleteEntries, deleteLevels, deleteParameter} {
		if _, err := tx.ExecContext(ctx, s.rebind(q), name); err != nil {
			return err
		}
	}
	return nil
}

// sqlLoader pages through entries by id. A batch shorter than requested ends
// the sequence.
type sqlLoader struct {
	repo      *SQL
	parameter string
	lastID    int64
	more      bool
}

func (l *sqlLoader) HasMore() bool { return l.more }

func (l *sqlLoader) NextBatch(ctx context.Context, size int) ([]model.Entry, error) {
	if !l.more {
		return nil, nil
	}

	rows, err := l.repo.db.QueryContext(ctx, l.repo.rebind(queryEntries), l.parameter, l.lastID, size)
	if err != nil {
		return nil, newStorageError(string(l.repo.dialect), "load entries", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0, size)
	for rows.Next() {
		var (
			id     int64
			levels string
		)
		if err := rows.Scan(&id, &levels); err != nil {
			return nil, newStorageError(string(l.repo.dialect), "load entries", err)
		}

		var e model.Entry
		if err := json.Unmarshal([]byte(levels), &e.Levels); err != nil {
			return nil, newStorageError(string(l.repo.dialect), "load entries",
				fmt.Errorf("entry %d: %w", id, err))
		}
		entries = append(entries, e)
		l.lastID = id
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(string(l.repo.dialect), "load entries", err)
	}

	if len(entries) < size {
		l.more = false
	}
	return entries, nil
}

func (l *sqlLoader) Close() error {
	l.more = false
	return nil
}
