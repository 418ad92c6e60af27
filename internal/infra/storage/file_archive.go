// File: internal/infra/storage/file_archive.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/repository"
)

var _ repository.ChatArchive = (*FileArchive)(nil)

// FileArchive keeps the whole chat collection in a single JSON document on the
// local filesystem. Writes go through a temp file and rename so a crash cannot
// leave a half-written document behind.
type FileArchive struct {
	dir   string
	codec *Codec
	log   *zerolog.Logger
}

func NewFileArchive(dir string, codec *Codec, logger *zerolog.Logger) *FileArchive {
	return &FileArchive{dir: dir, codec: codec, log: logger}
}

func (a *FileArchive) path() string {
	return filepath.Join(a.dir, StorageKey+".json")
}

func (a *FileArchive) Save(ctx context.Context, chats []*model.Chat) error {
	payload, err := a.codec.Encode(chats)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w: %v", domain.ErrStorageUnavailable, err)
	}
	tmp, err := os.CreateTemp(a.dir, StorageKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), a.path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (a *FileArchive) Load(ctx context.Context) ([]*model.Chat, error) {
	data, err := os.ReadFile(a.path())
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.Chat{}, nil
		}
		return nil, fmt.Errorf("read document: %w: %v", domain.ErrStorageUnavailable, err)
	}
	chats, err := a.codec.Decode(data)
	if err != nil {
		// Malformed content is treated the same as an absent document.
		a.log.Warn().Err(err).Str("path", a.path()).Msg("stored chats unreadable, starting empty")
		return []*model.Chat{}, nil
	}
	return chats, nil
}
