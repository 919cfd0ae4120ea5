package llm

import (
	"context"
	"errors"
	"fmt"

	"clementus360/nudge-agent/types"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 256
)

// Classifier is one model endpoint able to label a request
type Classifier interface {
	Classify(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error)
}

// ClassifierFunc adapts a plain function to Classifier
type ClassifierFunc func(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error)

func (f ClassifierFunc) Classify(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	return f(ctx, req)
}

// ChatClassifier talks to any OpenAI-compatible chat completions API.
// Mistral and Ollama (under /v1) both speak it.
type ChatClassifier struct {
	client openai.Client
	model  string
}

func NewChatClassifier(baseURL, apiKey, model string, opts ...option.RequestOption) *ChatClassifier {
	clientOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		// the orchestrator owns retry policy
		option.WithMaxRetries(0),
	}
	clientOpts = append(clientOpts, opts...)

	return &ChatClassifier{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}
}

func (c *ChatClassifier) Model() string {
	return c.model
}

func (c *ChatClassifier) Classify(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	messages, err := BuildMessages(req)
	if err != nil {
		return types.ClassificationResult{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(classifyTemperature),
		MaxTokens:   openai.Int(classifyMaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return types.ClassificationResult{}, fmt.Errorf("%s returned status %d: %w", c.model, apiErr.StatusCode, err)
		}
		return types.ClassificationResult{}, fmt.Errorf("%s request failed: %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return types.ClassificationResult{}, fmt.Errorf("%w: no choices returned from %s", ErrNonConforming, c.model)
	}

	result, err := ParseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		return types.ClassificationResult{}, err
	}
	result.Model = c.model
	return result, nil
}
