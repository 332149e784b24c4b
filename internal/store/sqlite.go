package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"persona-board/internal/syncstore"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores one widget in a local SQLite file. Map entries are rows
// keyed by (scope, k); scalar values are rows keyed by k. Every flush is one
// transaction that also appends to the change log.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the widget database in s.Dir.
func OpenSQLite(ctx context.Context, s Store) (*SQLiteBackend, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL: one writer plus readers from the CLI, TUI and server at once.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS map_entries (
			scope TEXT NOT NULL,
			k TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (scope, k)
		);`,
		`CREATE TABLE IF NOT EXISTS state_values (
			k TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS changes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			op TEXT NOT NULL,
			scope TEXT NOT NULL,
			k TEXT NOT NULL,
			json TEXT,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_changes_scope_k ON changes(scope, k);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO meta(k, v) VALUES('widget_id', ?)`, uuid.NewString())
	return err
}

func (b *SQLiteBackend) WidgetID(ctx context.Context) (string, error) {
	var id string
	err := b.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'widget_id'`).Scan(&id)
	return id, err
}

// entryRows is the part of *sql.Rows that readMapEntries needs.
type entryRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// readMapEntries consumes (scope, key, json) rows into maps and closes rows.
// An iteration error fails the whole read.
func readMapEntries(rows entryRows, maps map[string]map[string]json.RawMessage) error {
	defer rows.Close()
	for rows.Next() {
		var scope, k, raw string
		if err := rows.Scan(&scope, &k, &raw); err != nil {
			return err
		}
		m := maps[scope]
		if m == nil {
			m = map[string]json.RawMessage{}
			maps[scope] = m
		}
		m[k] = json.RawMessage(raw)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}

func (b *SQLiteBackend) Load(ctx context.Context) (syncstore.Snapshot, error) {
	snap := syncstore.Snapshot{
		Maps:   map[string]map[string]json.RawMessage{},
		Values: map[string]json.RawMessage{},
	}

	rows, err := b.db.QueryContext(ctx, `SELECT scope, k, json FROM map_entries`)
	if err != nil {
		return snap, err
	}
	if err := readMapEntries(rows, snap.Maps); err != nil {
		return snap, err
	}

	rows, err = b.db.QueryContext(ctx, `SELECT k, json FROM state_values`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, raw string
		if err := rows.Scan(&k, &raw); err != nil {
			return snap, err
		}
		snap.Values[k] = json.RawMessage(raw)
	}
	return snap, rows.Err()
}

func (b *SQLiteBackend) Apply(ctx context.Context, changes []syncstore.Change) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	for _, c := range changes {
		switch c.Op {
		case syncstore.OpMapSet:
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO map_entries(scope, k, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
				c.Scope, c.Key, string(c.Value), nowMs); err != nil {
				return err
			}
		case syncstore.OpMapDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM map_entries WHERE scope = ? AND k = ?`, c.Scope, c.Key); err != nil {
				return err
			}
		case syncstore.OpValueSet:
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_values(k, json, updated_at_unixms) VALUES(?, ?, ?)`,
				c.Key, string(c.Value), nowMs); err != nil {
				return err
			}
		default:
			return errors.New("unknown change op: " + string(c.Op))
		}
		var raw sql.NullString
		if c.Value != nil {
			raw = sql.NullString{String: string(c.Value), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO changes(id, op, scope, k, json, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), string(c.Op), c.Scope, c.Key, raw, nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) Changes(ctx context.Context, since int64, limit int) ([]ChangeRecord, error) {
	q := `SELECT seq, id, op, scope, k, json, created_at_unixms FROM changes WHERE seq > ? ORDER BY seq ASC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = b.db.QueryContext(ctx, q+` LIMIT ?`, since, limit)
	} else {
		rows, err = b.db.QueryContext(ctx, q, since)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChangeRecord
	for rows.Next() {
		var (
			r    ChangeRecord
			op   string
			raw  sql.NullString
			atMs int64
		)
		if err := rows.Scan(&r.Seq, &r.ID, &op, &r.Scope, &r.Key, &raw, &atMs); err != nil {
			return nil, err
		}
		r.Op = syncstore.Op(op)
		if raw.Valid {
			r.Value = json.RawMessage(raw.String)
		}
		r.At = time.UnixMilli(atMs).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }
