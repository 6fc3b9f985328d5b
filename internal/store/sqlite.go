package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every collection as a single JSON value row.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// CollectionInfo describes one stored collection row.
type CollectionInfo struct {
	Name      Collection
	SizeBytes int
	UpdatedAt time.Time
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, c Collection, dst any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM collections WHERE name = ?`, string(c),
	).Scan(&value)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", c, err)
	}

	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c Collection, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(c), string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", c, err)
	}
	return nil
}

// List returns the stored collections ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, length(value), updated_at FROM collections ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var infos []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		var name string
		var updatedAt int64
		if err := rows.Scan(&name, &info.SizeBytes, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		info.Name = Collection(name)
		info.UpdatedAt = time.Unix(updatedAt, 0)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
