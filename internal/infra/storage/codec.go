// File: internal/infra/storage/codec.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"brainz-training/internal/domain/model"
	"brainz-training/internal/infra/security"
)

// StorageKey is the fixed name the chat collection document lives under,
// whichever backend holds it.
const StorageKey = "training-chats"

// Wire representation of the persisted document. Timestamps travel as
// RFC3339Nano strings and are rebuilt into time.Time at this boundary.
type messageDoc struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type chatDoc struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Topic       string       `json:"topic"`
	Aim         string       `json:"aim"`
	Description string       `json:"description"`
	Messages    []messageDoc `json:"messages"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// Codec serializes the chat collection for storage. When an encryption
// service is supplied the JSON payload is sealed at rest.
type Codec struct {
	enc *security.EncryptionService
}

func NewCodec(enc *security.EncryptionService) *Codec {
	return &Codec{enc: enc}
}

func (c *Codec) Encode(chats []*model.Chat) ([]byte, error) {
	docs := make([]chatDoc, 0, len(chats))
	for _, chat := range chats {
		d := chatDoc{
			ID:          chat.ID,
			Name:        chat.Name,
			Topic:       chat.Topic,
			Aim:         chat.Aim,
			Description: chat.Description,
			Messages:    make([]messageDoc, 0, len(chat.Messages)),
			CreatedAt:   chat.CreatedAt.Format(time.RFC3339Nano),
			UpdatedAt:   chat.UpdatedAt.Format(time.RFC3339Nano),
		}
		for _, m := range chat.Messages {
			d.Messages = append(d.Messages, messageDoc{
				ID:        m.ID,
				Role:      string(m.Role),
				Content:   m.Content,
				Timestamp: m.Timestamp.Format(time.RFC3339Nano),
			})
		}
		docs = append(docs, d)
	}
	payload, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal chats: %w", err)
	}
	if c.enc != nil {
		payload, err = c.enc.Seal(payload)
		if err != nil {
			return nil, fmt.Errorf("seal chats: %w", err)
		}
	}
	return payload, nil
}

// Decode rebuilds the collection from a stored payload. Any malformed input
// yields an error; callers degrade that to an empty collection.
func (c *Codec) Decode(data []byte) ([]*model.Chat, error) {
	if c.enc != nil {
		var err error
		data, err = c.enc.Open(data)
		if err != nil {
			return nil, fmt.Errorf("open chats: %w", err)
		}
	}
	var docs []chatDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal chats: %w", err)
	}
	chats := make([]*model.Chat, 0, len(docs))
	for _, d := range docs {
		createdAt, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("chat %s createdAt: %w", d.ID, err)
		}
		updatedAt, err := time.Parse(time.RFC3339Nano, d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("chat %s updatedAt: %w", d.ID, err)
		}
		chat := &model.Chat{
			ID:          d.ID,
			Name:        d.Name,
			Topic:       d.Topic,
			Aim:         d.Aim,
			Description: d.Description,
			Messages:    make([]model.ChatMessage, 0, len(d.Messages)),
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		}
		for _, m := range d.Messages {
			ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("message %s timestamp: %w", m.ID, err)
			}
			chat.Messages = append(chat.Messages, model.ChatMessage{
				ID:        m.ID,
				Role:      model.Role(m.Role),
				Content:   m.Content,
				Timestamp: ts,
			})
		}
		chats = append(chats, chat)
	}
	return chats, nil
}
