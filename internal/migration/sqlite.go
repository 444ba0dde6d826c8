package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

const sqliteVersionTable = "schema_migrations"

// sqliteDriver runs migrations over an already open sqlite handle. The sqlite
// driver shipped with migrate registers modernc's "sqlite" database/sql driver,
// which collides with the one the gorm dialector registers under the same name.
type sqliteDriver struct {
	db     *sql.DB
	locked atomic.Bool
}

func newSQLiteDriver(db *sql.DB) (database.Driver, error) {
	d := &sqliteDriver{db: db}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sqliteDriver) ensureVersionTable() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS ` + sqliteVersionTable + ` (version BIGINT NOT NULL PRIMARY KEY, dirty BOOLEAN NOT NULL)`)
	if err != nil {
		return fmt.Errorf("create %s: %w", sqliteVersionTable, err)
	}
	return nil
}

func (d *sqliteDriver) Open(string) (database.Driver, error) {
	return nil, errors.New("sqlite migrations run on an existing connection")
}

// Close leaves the handle open; it belongs to the caller.
func (d *sqliteDriver) Close() error { return nil }

func (d *sqliteDriver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

func (d *sqliteDriver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

func (d *sqliteDriver) Run(migration io.Reader) error {
	query, err := io.ReadAll(migration)
	if err != nil {
		return err
	}

	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(query)); err != nil {
			return &database.Error{OrigErr: err, Query: query}
		}
		return nil
	})
}

func (d *sqliteDriver) SetVersion(version int, dirty bool) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM ` + sqliteVersionTable); err != nil {
			return err
		}
		if version >= 0 || (version == database.NilVersion && dirty) {
			if _, err := tx.Exec(`INSERT INTO `+sqliteVersionTable+` (version, dirty) VALUES (?, ?)`, version, dirty); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *sqliteDriver) Version() (int, bool, error) {
	var (
		version int
		dirty   bool
	)
	err := d.db.QueryRow(`SELECT version, dirty FROM ` + sqliteVersionTable + ` LIMIT 1`).Scan(&version, &dirty)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return database.NilVersion, false, nil
	case err != nil:
		return 0, false, err
	}
	return version, dirty, nil
}

func (d *sqliteDriver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, table := range tables {
		if _, err := d.db.Exec(`DROP TABLE IF EXISTS "` + table + `"`); err != nil {
			return err
		}
	}
	return d.ensureVersionTable()
}

func (d *sqliteDriver) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
