// Package llm wraps the model calls behind the chat surface: deciding
// whether a query is about racing, planning table filters for it, and
// turning raw rows back into prose.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrUnclassified means the model's reply did not follow the required
// format. Callers treat it as an ambiguous query rather than a failure.
var ErrUnclassified = errors.New("model response did not match expected format")

// Label is the routing decision for one query.
type Label string

const (
	LabelNotRacing Label = "not_racing"
	LabelSimple    Label = "simple"
	LabelComplex   Label = "complex"
)

// completionClient is the slice of the OpenAI client the chains use.
// Tests substitute a canned implementation.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client runs the prompt chains against one configured model.
type Client struct {
	api   completionClient
	model string
	log   *zap.Logger
}

// New builds a Client for the given API key and model.
func New(apiKey, model string, log *zap.Logger) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: openai.NewClient(apiKey), model: model, log: log}
}

// complete sends one system+user exchange and returns the text reply.
func (c *Client) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// extractJSON pulls the JSON object out of a model reply, tolerating code
// fences and prose around it.
func extractJSON(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnclassified)
	}
	candidate := json.RawMessage(s[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: invalid JSON object", ErrUnclassified)
	}
	return candidate, nil
}
