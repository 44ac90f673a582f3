package openai

import (
	"context"
	"errors"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// systemPrompt instructs the model to rewrite without adding commentary.
const systemPrompt = "You rewrite user comments that contain abusive or " +
	"offensive language into a polite form. Preserve the meaning and the " +
	"language of the comment. Reply with the rewritten comment only."

// Config holds the OpenAI adapter configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Adapter implements rewriter.Model using the official openai-go SDK
// (chat completions). The client is built once on first use.
type Adapter struct {
	model string
	opts  []option.RequestOption

	once   sync.Once
	client openai.Client
}

// NewAdapter creates an OpenAI-backed rewrite model. A key is required
// unless a custom base URL points at a local OpenAI-compatible server.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Adapter{model: cfg.Model, opts: opts}, nil
}

// Rewrite sends the text through a chat completion and returns the model's
// rewritten form.
func (a *Adapter) Rewrite(ctx context.Context, text string) (string, error) {
	a.once.Do(func() {
		a.client = openai.NewClient(a.opts...)
	})

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
