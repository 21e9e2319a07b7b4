// Package sqlitestore backs share links, click deduplication and click
// analytics with a local SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/pinfall/internal/share"
)

// Namespaces used by the share service.
const (
	NamespaceLinks = "links"
	NamespaceSeen  = "seen"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	expires_at INTEGER,
	PRIMARY KEY (namespace, key)
);

CREATE INDEX IF NOT EXISTS idx_kv_expires ON kv(expires_at);

CREATE TABLE IF NOT EXISTS clicks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event      TEXT NOT NULL,
	token      TEXT NOT NULL,
	channel    TEXT NOT NULL DEFAULT '',
	campaign   TEXT NOT NULL DEFAULT '',
	content_id TEXT NOT NULL DEFAULT '',
	is_unique  INTEGER NOT NULL DEFAULT 0,
	ts         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clicks_token ON clicks(token);
`

// DB wraps a sql.DB holding the kv and clicks tables.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

var (
	_ share.Analytics   = (*DB)(nil)
	_ share.StatsReader = (*DB)(nil)
)

// Open opens (or creates) the database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// SetClock replaces the time source used for expiry.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// Namespace returns a share.Store over one key space.
func (db *DB) Namespace(name string) *KV {
	return &KV{db: db, namespace: name}
}

// KV is one namespace of the kv table.
type KV struct {
	db        *DB
	namespace string
}

var _ share.Store = (*KV)(nil)

// Put implements share.Store. A zero ttl keeps the key forever.
func (kv *KV) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: kv.db.now().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := kv.db.conn.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value      = excluded.value,
			expires_at = excluded.expires_at
	`, kv.namespace, key, value, expires)
	if err != nil {
		return fmt.Errorf("sqlitestore: put %s/%s: %w", kv.namespace, key, err)
	}
	return nil
}

// Get implements share.Store. Expired keys are reported as missing.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value   string
		expires sql.NullInt64
	)
	err := kv.db.conn.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE namespace = ? AND key = ?`,
		kv.namespace, key,
	).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlitestore: get %s/%s: %w", kv.namespace, key, err)
	}
	if expires.Valid && expires.Int64 <= kv.db.now().UnixMilli() {
		return "", false, nil
	}
	return value, true, nil
}

// Purge deletes expired keys and returns how many were removed.
func (db *DB) Purge(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		db.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: purge: %w", err)
	}
	return res.RowsAffected()
}

// Write implements share.Analytics.
func (db *DB) Write(ctx context.Context, e share.ClickEvent) error {
	unique := 0
	if e.Unique {
		unique = 1
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO clicks (event, token, channel, campaign, content_id, is_unique, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Name, e.Token, e.Channel, e.Campaign, e.ContentID, unique, e.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlitestore: insert click: %w", err)
	}
	return nil
}

// Clicks implements share.StatsReader.
func (db *DB) Clicks(ctx context.Context, token string) (share.ClickStats, error) {
	stats := share.ClickStats{Token: token}
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_unique), 0) FROM clicks WHERE token = ?`, token,
	).Scan(&stats.Total, &stats.Unique)
	if err != nil {
		return stats, fmt.Errorf("sqlitestore: count clicks: %w", err)
	}
	return stats, nil
}
