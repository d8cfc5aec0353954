package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"harristax/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  account TEXT NOT NULL,
  statementYear TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_account ON runs(account);

CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  account TEXT NOT NULL,
  site TEXT NOT NULL,
  url TEXT,
  payloadJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(account, site)
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  account TEXT NOT NULL,
  statementYear TEXT NOT NULL,
  path TEXT NOT NULL,
  bytes INTEGER NOT NULL,
  status TEXT NOT NULL,
  source TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_account ON documents(account);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID, account, statementYear string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, account, statementYear, timingsJson, countsJson)
VALUES (?, ?, ?, ?, ?)
`, traceID, account, statementYear, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, account, statementYear, timingsJson, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Account, &row.StatementYear, &row.TimingsJSON, &row.CountsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpsertResult keeps the latest structured payload per account and site.
func (d *DB) UpsertResult(account string, site internal.Site, url, payloadJSON string) error {
	_, err := d.conn.Exec(`
INSERT INTO results (account, site, url, payloadJson)
VALUES (?, ?, ?, ?)
ON CONFLICT(account, site) DO UPDATE SET
  url=excluded.url,
  payloadJson=excluded.payloadJson,
  createdAt=CURRENT_TIMESTAMP
`, account, string(site), url, payloadJSON)
	return err
}

func (d *DB) GetResult(account string, site internal.Site) (*internal.ResultRow, error) {
	var row internal.ResultRow
	err := d.conn.QueryRow(`
SELECT id, account, site, url, payloadJson, createdAt
FROM results WHERE account = ? AND site = ?
`, account, string(site)).Scan(&row.ID, &row.Account, &row.Site, &row.URL, &row.PayloadJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) InsertDocument(account, statementYear, path string, bytes int, status, source string) error {
	_, err := d.conn.Exec(`
INSERT INTO documents (account, statementYear, path, bytes, status, source)
VALUES (?, ?, ?, ?, ?, ?)
`, account, statementYear, path, bytes, status, source)
	return err
}

func (d *DB) ListDocuments(account string) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, account, statementYear, path, bytes, status, source, createdAt
FROM documents WHERE account = ? ORDER BY id DESC
`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		var source sql.NullString
		if err := rows.Scan(&row.ID, &row.Account, &row.StatementYear, &row.Path, &row.Bytes, &row.Status, &source, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.Source = source.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
