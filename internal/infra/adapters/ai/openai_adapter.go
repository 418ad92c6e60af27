package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ReplyAdapter = (*OpenAIReplier)(nil)

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIReplier produces the companion's answer via an OpenAI-compatible Chat
// Completions endpoint.
type OpenAIReplier struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewOpenAIReplier(apiKey, model, base string) (*OpenAIReplier, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAIReplier{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (o *OpenAIReplier) Name() string { return "openai" }

func (o *OpenAIReplier) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	wire := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	reqBody := struct {
		Model    string        `json:"model"`
		Messages []wireMessage `json:"messages"`
	}{Model: o.model, Messages: wire}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
