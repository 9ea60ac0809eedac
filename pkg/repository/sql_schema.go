package repository

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

const (
	// DialectSQLite uses the pure Go modernc.org/sqlite driver.
	DialectSQLite Dialect = "sqlite"

	// DialectSQLite3 uses the cgo github.com/mattn/go-sqlite3 driver.
	DialectSQLite3 Dialect = "sqlite3"

	// DialectPostgres uses github.com/lib/pq.
	DialectPostgres Dialect = "postgres"
)

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectSQLite3, DialectPostgres:
		return true
	}
	return false
}

func (d Dialect) sqlite() bool {
	return d == DialectSQLite || d == DialectSQLite3
}

// sqliteSchema is shared by both sqlite drivers.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS param_parameter (
		name            TEXT PRIMARY KEY,
		input_levels    INTEGER NOT NULL,
		nullable        INTEGER NOT NULL DEFAULT 0,
		cacheable       INTEGER NOT NULL DEFAULT 1,
		array_separator TEXT NOT NULL DEFAULT '',
		updated_at      INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS param_level (
		parameter     TEXT NOT NULL REFERENCES param_parameter(name) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		type          TEXT NOT NULL DEFAULT '',
		matcher       TEXT NOT NULL DEFAULT '',
		is_array      INTEGER NOT NULL DEFAULT 0,
		level_creator TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (parameter, position)
	)`,
	`CREATE TABLE IF NOT EXISTS param_entry (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		parameter TEXT NOT NULL REFERENCES param_parameter(name) ON DELETE CASCADE,
		levels    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_param_entry_parameter ON param_entry(parameter, id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS param_parameter (
		name            TEXT PRIMARY KEY,
		input_levels    INTEGER NOT NULL,
		nullable        BOOLEAN NOT NULL DEFAULT FALSE,
		cacheable       BOOLEAN NOT NULL DEFAULT TRUE,
		array_separator TEXT NOT NULL DEFAULT '',
		updated_at      BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS param_level (
		parameter     TEXT NOT NULL REFERENCES param_parameter(name) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		type          TEXT NOT NULL DEFAULT '',
		matcher       TEXT NOT NULL DEFAULT '',
		is_array      BOOLEAN NOT NULL DEFAULT FALSE,
		level_creator TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (parameter, position)
	)`,
	`CREATE TABLE IF NOT EXISTS param_entry (
		id        BIGSERIAL PRIMARY KEY,
		parameter TEXT NOT NULL REFERENCES param_parameter(name) ON DELETE CASCADE,
		levels    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_param_entry_parameter ON param_entry(parameter, id)`,
}

func (d Dialect) schema() []string {
	if d == DialectPostgres {
		return postgresSchema
	}
	return sqliteSchema
}

const (
	queryParameter = `SELECT input_levels, nullable, cacheable, array_separator
		FROM param_parameter WHERE name = ?`
	queryLevels = `SELECT name, type, matcher, is_array, level_creator
		FROM param_level WHERE parameter = ? ORDER BY position`
	queryEntries = `SELECT id, levels FROM param_entry
		WHERE parameter = ? AND id > ? ORDER BY id LIMIT ?`
	queryNames = `SELECT name FROM param_parameter ORDER BY name`

	insertParameter = `INSERT INTO param_parameter
		(name, input_levels, nullable, cacheable, array_separator, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	insertLevel = `INSERT INTO param_level
		(parameter, position, name, type, matcher, is_array, level_creator)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertEntry = `INSERT INTO param_entry (parameter, levels) VALUES (?, ?)`

	deleteEntries   = `DELETE FROM param_entry WHERE parameter = ?`
	deleteLevels    = `DELETE FROM param_level WHERE parameter = ?`
	deleteParameter = `DELETE FROM param_parameter WHERE name = ?`
)
