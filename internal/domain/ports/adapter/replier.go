package adapter

import (
	"context"

	"brainz-training/internal/domain/model"
)

// ReplyAdapter is the port for producing the companion's answer to a user
// message. Implementations receive the transcript so far (already including
// the latest user message) and must return exactly one assistant reply.
type ReplyAdapter interface {
	Name() string
	Reply(ctx context.Context, messages []model.ChatMessage) (string, error)
}
