package database

import (
	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
)

// Schema statements mirrored from migrations/. The in-memory database used
// in tests cannot run the file-based migration (each connection is a fresh
// database), so the statements are executed directly there.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transfer_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_id VARCHAR(256) NOT NULL,
		chain VARCHAR(32) NOT NULL,
		op_type VARCHAR(32) NOT NULL,
		amount VARCHAR(64) NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS client_state (
		name VARCHAR(64) PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

func (d *DefaultDatabase) DoMigration() error {
	if d.cfg.InMemoryDb {
		for _, stmt := range schemaStatements {
			if _, err := d.db.Exec(stmt); err != nil {
				return err
			}
		}

		return nil
	}

	driver, err := sqlite3.WithInstance(d.db, &sqlite3.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations/",
		"sqlite3",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
