package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lockin-app/lockin-api/pkg/config"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

// Usage reports token consumption for one model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

const parserSystemPrompt = "You are a helpful assistant that outputs only valid JSON."

// ParserClient turns free-text commitment descriptions into schedule JSON
// via an OpenAI chat completion.
type ParserClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewParserClient builds a client from the parser config section.
func NewParserClient(cfg config.ParserConfig) *ParserClient {
	return &ParserClient{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}
}

// Complete sends one prompt and returns the raw model output.
func (c *ParserClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(parserSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", Usage{}, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "parser model call failed")
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, appErrors.Clone(appErrors.ErrUpstream, "parser model returned no choices")
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}
