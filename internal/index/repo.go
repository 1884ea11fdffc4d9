package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// IssueRow represents a row in the issues table.
type IssueRow struct {
	Key           string
	Path          string
	Summary       string
	Status        string
	Priority      string
	Link          string
	Checksum      string
	RemoteUpdated time.Time
	SyncedAt      time.Time
}

// Run summarises one completed sync run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Synced     int
	Unchanged  int
	Failed     int
}

// SearchResult represents one search hit.
type SearchResult struct {
	Key     string
	Summary string
	Snippet string
}

// UpsertIssue inserts or replaces an issue row. body is the rendered
// Markdown body, stored for search.
func (db *DB) UpsertIssue(row IssueRow, body string) error {
	_, err := db.conn.Exec(`
		INSERT INTO issues (key, path, summary, status, priority, link, body, checksum, remote_updated, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			path           = excluded.path,
			summary        = excluded.summary,
			status         = excluded.status,
			priority       = excluded.priority,
			link           = excluded.link,
			body           = excluded.body,
			checksum       = excluded.checksum,
			remote_updated = excluded.remote_updated,
			synced_at      = excluded.synced_at
	`, row.Key, row.Path, row.Summary, row.Status, row.Priority, row.Link,
		body, row.Checksum, row.RemoteUpdated, row.SyncedAt)
	if err != nil {
		return fmt.Errorf("index: upsert issue: %w", err)
	}
	return nil
}

// GetIssue returns one issue row, or apperr.ErrNotFound.
func (db *DB) GetIssue(key string) (*IssueRow, error) {
	row := db.conn.QueryRow(`
		SELECT key, path, summary, status, priority, link, checksum, remote_updated, synced_at
		FROM issues WHERE key = ?
	`, key)
	var r IssueRow
	var remoteUpdated, syncedAt sql.NullTime
	err := row.Scan(&r.Key, &r.Path, &r.Summary, &r.Status, &r.Priority, &r.Link,
		&r.Checksum, &remoteUpdated, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: issue %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get issue: %w", err)
	}
	r.RemoteUpdated = remoteUpdated.Time
	r.SyncedAt = syncedAt.Time
	return &r, nil
}

// GetChecksum returns the stored checksum for an issue, or empty string if
// not found.
func (db *DB) GetChecksum(key string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM issues WHERE key = ?`, key).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetChecksumByPath returns the stored checksum for the issue whose note
// lives at path, or empty string if none does.
func (db *DB) GetChecksumByPath(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM issues WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil
	}
	return cs, nil
}

// SetChecksumByPath records a new content fingerprint for the issue whose
// note lives at path. Used by the vault watcher after operator edits;
// paths without an issue row are ignored.
func (db *DB) SetChecksumByPath(path, checksum string) error {
	_, err := db.conn.Exec(`UPDATE issues SET checksum = ? WHERE path = ?`, checksum, path)
	if err != nil {
		return fmt.Errorf("index: set checksum: %w", err)
	}
	return nil
}

// AllChecksums returns every issue path mapped to its stored checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM issues`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListIssues returns issue rows ordered by key, optionally filtered by
// exact status.
func (db *DB) ListIssues(status string) ([]IssueRow, error) {
	query := `
		SELECT key, path, summary, status, priority, link, checksum, remote_updated, synced_at
		FROM issues`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY key`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list issues: %w", err)
	}
	defer rows.Close()

	var out []IssueRow
	for rows.Next() {
		var r IssueRow
		var remoteUpdated, syncedAt sql.NullTime
		if err := rows.Scan(&r.Key, &r.Path, &r.Summary, &r.Status, &r.Priority, &r.Link,
			&r.Checksum, &remoteUpdated, &syncedAt); err != nil {
			return nil, err
		}
		r.RemoteUpdated = remoteUpdated.Time
		r.SyncedAt = syncedAt.Time
		out = append(out, r)
	}
	return out, rows.Err()
}

// Search performs a LIKE-based search over summaries and rendered bodies.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT key, summary, substr(body, 1, 200)
		FROM issues
		WHERE summary LIKE ? OR body LIKE ?
		ORDER BY key
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Key, &r.Summary, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordRun stores the summary of a completed sync run.
func (db *DB) RecordRun(run Run) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, started_at, finished_at, total, synced, unchanged, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.FinishedAt, run.Total, run.Synced, run.Unchanged, run.Failed)
	if err != nil {
		return fmt.Errorf("index: record run: %w", err)
	}
	return nil
}

// LastRun returns the most recently finished run, or nil when no run has
// been recorded yet.
func (db *DB) LastRun() (*Run, error) {
	row := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, total, synced, unchanged, failed
		FROM runs ORDER BY finished_at DESC LIMIT 1
	`)
	var r Run
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Synced, &r.Unchanged, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: last run: %w", err)
	}
	return &r, nil
}
