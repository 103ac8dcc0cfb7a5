// Package cache persists an advisory local copy of the catalog in SQLite.
// The record store stays the source of truth: a missing, stale, or corrupt
// cache is never an error the caller must stop for, only a degraded start.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	record_id   TEXT PRIMARY KEY,
	platform    TEXT NOT NULL,
	external_id TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	original_url TEXT NOT NULL,
	thumbnail   TEXT NOT NULL DEFAULT '',
	embed_urls  TEXT NOT NULL DEFAULT '[]',
	duration    TEXT NOT NULL DEFAULT 'unknown',
	created_at  TEXT NOT NULL DEFAULT '',
	view_count  INTEGER NOT NULL DEFAULT 0,
	tags        TEXT NOT NULL DEFAULT '[]',
	category    TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'active'
);
`

// Cache wraps the local SQLite database.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path. Use ":memory:" in
// tests. WAL and a busy timeout are applied up front so a UI shell and a
// background refresh can share the file.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ReplaceAll atomically swaps the cached entry set for the given one.
func (c *Cache) ReplaceAll(ctx context.Context, entries []catalog.Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	for _, e := range entries {
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache: %w", err)
	}
	return nil
}

// Put upserts a single entry, used for write-behind after admission.
func (c *Cache) Put(ctx context.Context, e catalog.Entry) error {
	return insertEntry(ctx, c.db, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, e catalog.Entry) error {
	embeds, err := json.Marshal(e.Video.EmbedCandidates)
	if err != nil {
		return fmt.Errorf("marshal embed urls: %w", err)
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	createdAt := ""
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO entries (record_id, platform, external_id, title, description,
			original_url, thumbnail, embed_urls, duration, created_at,
			view_count, tags, category, author, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			platform = excluded.platform,
			external_id = excluded.external_id,
			title = excluded.title,
			description = excluded.description,
			original_url = excluded.original_url,
			thumbnail = excluded.thumbnail,
			embed_urls = excluded.embed_urls,
			duration = excluded.duration,
			created_at = excluded.created_at,
			view_count = excluded.view_count,
			tags = excluded.tags,
			category = excluded.category,
			author = excluded.author,
			status = excluded.status`,
		e.RecordID, string(e.Video.Platform), e.Video.ExternalID,
		e.Video.Title, e.Video.Description, e.Video.OriginalURL,
		e.Video.ThumbnailURL, string(embeds), e.DurationLabel, createdAt,
		e.ViewCount, string(tags), e.Category, e.Author, string(e.Status))
	if err != nil {
		return fmt.Errorf("insert cache entry %s: %w", e.RecordID, err)
	}
	return nil
}

// Load reads the cached entry set in insertion-stable rowid order.
func (c *Cache) Load(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT record_id, platform, external_id, title, description,
			original_url, thumbnail, embed_urls, duration, created_at,
			view_count, tags, category, author, status
		FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var (
			e                        catalog.Entry
			platform, embeds, tags   string
			createdAt, status, title string
		)
		if err := rows.Scan(&e.RecordID, &platform, &e.Video.ExternalID,
			&title, &e.Video.Description, &e.Video.OriginalURL,
			&e.Video.ThumbnailURL, &embeds, &e.DurationLabel, &createdAt,
			&e.ViewCount, &tags, &e.Category, &e.Author, &status); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e.Video.Title = title
		e.Video.Platform = classify.ParsePlatform(platform)
		e.Status = catalog.Status(status)
		if err := json.Unmarshal([]byte(embeds), &e.Video.EmbedCandidates); err != nil {
			return nil, fmt.Errorf("decode embed urls for %s: %w", e.RecordID, err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", e.RecordID, err)
		}
		if createdAt != "" {
			if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
				e.CreatedAt = ts
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache: %w", err)
	}
	return entries, nil
}
