package model

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Defaults applied to a freshly created training chat.
const (
	DefaultTopic       = "General Training"
	DefaultAim         = "Improve knowledge and understanding"
	DefaultDescription = "A new training session to enhance learning"
)

// ChatMessage represents one message within a training chat.
type ChatMessage struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Chat is the aggregate root for one training conversation with the companion.
type Chat struct {
	ID          string
	Name        string
	Topic       string
	Aim         string
	Description string
	Messages    []ChatMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewChat(id, name string) *Chat {
	now := time.Now()
	return &Chat{
		ID:          id,
		Name:        name,
		Topic:       DefaultTopic,
		Aim:         DefaultAim,
		Description: DefaultDescription,
		Messages:    make([]ChatMessage, 0, 8),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Chat) AddMessage(id string, role Role, content string) {
	c.Messages = append(c.Messages, ChatMessage{
		ID:        id,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.UpdatedAt = time.Now()
}

// ChatUpdate carries a partial metadata edit. Nil fields are left untouched.
type ChatUpdate struct {
	Name        *string
	Topic       *string
	Aim         *string
	Description *string
}

// Apply merges the update into the chat and bumps UpdatedAt.
func (c *Chat) Apply(u ChatUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Topic != nil {
		c.Topic = *u.Topic
	}
	if u.Aim != nil {
		c.Aim = *u.Aim
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	c.UpdatedAt = time.Now()
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (c *Chat) Clone() *Chat {
	cp := *c
	cp.Messages = make([]ChatMessage, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

func (c *Chat) GetRecentMessages(n int) []ChatMessage {
	if n <= 0 || len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
