package synthesis

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrInvalidConfig indicates invalid generator configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGenerationFailed indicates the chat completion call failed.
	ErrGenerationFailed = errors.New("answer generation failed")
)

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Model() string
}

// GeneratorConfig holds configuration for the OpenAI-compatible
// chat completion client.
type GeneratorConfig struct {
	// BaseURL overrides the API endpoint. Any OpenAI-compatible
	// server works, e.g. https://api.groq.com/openai/v1.
	BaseURL string

	// APIKey authenticates against the endpoint.
	APIKey string

	// Model is the chat model name.
	Model string

	// Temperature controls sampling. Default 0.1 keeps answers
	// anchored to the provided context.
	Temperature float32

	// MaxTokens bounds the completion length. Default: 1024.
	MaxTokens int
}

// Validate validates the configuration.
func (c GeneratorConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// ApplyDefaults fills zero values with defaults.
func (c *GeneratorConfig) ApplyDefaults() {
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
}

// OpenAIGenerator calls an OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	config GeneratorConfig
}

// NewOpenAIGenerator creates a chat completion generator.
func NewOpenAIGenerator(config GeneratorConfig) (*OpenAIGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	config.ApplyDefaults()

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Model returns the configured chat model name.
func (g *OpenAIGenerator) Model() string {
	return g.config.Model
}

// Generate calls the chat completion endpoint and returns the raw
// completion text.
func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
