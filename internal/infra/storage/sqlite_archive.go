// File: internal/infra/storage/sqlite_archive.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/repository"
)

var _ repository.ChatArchive = (*SQLiteArchive)(nil)

// SQLiteArchive stores the serialized chat collection in a single-row
// documents table, keyed by the fixed storage key.
type SQLiteArchive struct {
	db    *sql.DB
	codec *Codec
	log   *zerolog.Logger
}

func NewSQLiteArchive(dir string, codec *Codec, logger *zerolog.Logger) (*SQLiteArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "brainz.db"))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time keeps modernc's file locking happy.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLiteArchive{db: db, codec: codec, log: logger}, nil
}

func (a *SQLiteArchive) Close() error { return a.db.Close() }

func (a *SQLiteArchive) Save(ctx context.Context, chats []*model.Chat) error {
	payload, err := a.codec.Encode(chats)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO documents (key, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		StorageKey, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (a *SQLiteArchive) Load(ctx context.Context) ([]*model.Chat, error) {
	var doc string
	err := a.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE key = ?`, StorageKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return []*model.Chat{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	chats, err := a.codec.Decode([]byte(doc))
	if err != nil {
		a.log.Warn().Err(err).Msg("stored chats unreadable, starting empty")
		return []*model.Chat{}, nil
	}
	return chats, nil
}
