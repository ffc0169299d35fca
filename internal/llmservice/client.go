package llmservice

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/models"
)

var ErrEmptyResponse = errors.New("inference endpoint returned no choices")

// Result is the outcome of one inference call: either the model's text or
// the error that prevented it.
type Result struct {
	Text string
	Err  error
}

func Success(text string) Result { return Result{Text: text} }

func Failure(err error) Result { return Result{Err: err} }

func (r Result) OK() bool { return r.Err == nil }

// Client sends single-turn chat completions to the Hugging Face router,
// which speaks the OpenAI wire format.
type Client struct {
	llm   llms.Model
	model string
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	log.Debug().Str("base_url", llmConfig.BaseURL).Str("model", models.InferenceModel).Msg("Creating inference client")
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(models.InferenceModel),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, model: models.InferenceModel}, nil
}

// Generate sends prompt as one user message. No system message, history,
// streaming or retry.
func (c *Client) Generate(ctx context.Context, prompt string) Result {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return Failure(err)
	}
	if res == nil || len(res.Choices) == 0 {
		return Failure(ErrEmptyResponse)
	}
	return Success(res.Choices[0].Content)
}
