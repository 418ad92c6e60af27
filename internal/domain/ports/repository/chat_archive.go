package repository

import (
	"context"

	"brainz-training/internal/domain/model"
)

// -----------------------------
// Training chats
// -----------------------------

// ChatArchive durably stores the whole chat collection as one document under a
// fixed storage key. Save overwrites any prior document; Load returns an empty
// collection when no document exists or the stored one cannot be decoded.
type ChatArchive interface {
	Save(ctx context.Context, chats []*model.Chat) error
	Load(ctx context.Context) ([]*model.Chat, error)
}
