// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
)

var _ adapter.ReplyAdapter = (*GeminiReplier)(nil)

// GeminiReplier produces the companion's answer via the Gemini API.
type GeminiReplier struct {
	client *genai.Client
	model  string
	maxOut int
}

func NewGeminiReplier(ctx context.Context, apiKey, baseURL, modelName string, maxOut int) (*GeminiReplier, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiReplier{client: c, model: modelName, maxOut: maxOut}, nil
}

func (g *GeminiReplier) Name() string { return "gemini" }

func (g *GeminiReplier) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	last := messages[len(messages)-1]
	if last.Role != model.RoleUser {
		return "", errors.New("gemini: last message must be from user")
	}
	history := toGenAIHistory(messages[:len(messages)-1])

	chat, err := g.client.Chats.Create(
		ctx,
		g.model,
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
		},
		history,
	)
	if err != nil {
		return "", err
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", err
	}

	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			return t, nil
		}
	}
	return "", errors.New("gemini: empty candidate")
}

func toGenAIHistory(msgs []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if strings.EqualFold(string(m.Role), string(model.RoleAssistant)) {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
