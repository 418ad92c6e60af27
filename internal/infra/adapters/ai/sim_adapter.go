package ai

import (
	"context"
	"fmt"
	"time"

	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
)

var _ adapter.ReplyAdapter = (*SimulatedReplier)(nil)

// Greeting is the companion's opening line on the dashboard chat.
const Greeting = "Hi there! I'm your Junior AI companion. I'm excited to chat with you and help you learn! What would you like to explore today?"

// SimulatedReplier is the stand-in for a real inference backend. It answers
// every user message with a deterministic templated reply after a fixed
// artificial delay that emulates network latency.
type SimulatedReplier struct {
	delay time.Duration
}

func NewSimulatedReplier(delay time.Duration) *SimulatedReplier {
	return &SimulatedReplier{delay: delay}
}

func (s *SimulatedReplier) Name() string { return "simulated" }

func (s *SimulatedReplier) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = messages[i].Content
			break
		}
	}
	return fmt.Sprintf("Thank you for your message: %q. I'm here to help you train and learn!", last), nil
}
