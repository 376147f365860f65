// Package openai wraps the provider SDK behind narrow interfaces so the
// services above it can be tested without network calls.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the model used for generating embeddings.
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected embedding dimension.
	DefaultEmbeddingDimensions = 1536

	// embedBatchSize is the maximum number of inputs per embeddings request.
	embedBatchSize = 128
)

var (
	// ErrEmptyInput is returned when there is nothing to embed.
	ErrEmptyInput = errors.New("input cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions.
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// EmbeddingAPI defines the provider surface used for embedding generation.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// ChatAPI defines the provider surface used for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI API behind retry and dimension checks.
type Client struct {
	embeddings EmbeddingAPI
	chat       ChatAPI
	dimensions int
	retry      RetryPolicy
}

// SDKAdapter implements EmbeddingAPI and ChatAPI over the official SDK client.
type SDKAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewSDKAdapter(apiKey string, model openai.EmbeddingModel) *SDKAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &SDKAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the embeddings endpoint for a single batch of inputs.
func (a *SDKAdapter) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(inputs), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (a *SDKAdapter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, req)
}

type Config struct {
	APIKey              string
	EmbeddingModel      string
	EmbeddingDimensions int
	Retry               *RetryPolicy
}

// NewClient creates a client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	adapter := NewSDKAdapter(cfg.APIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
	return &Client{
		embeddings: adapter,
		chat:       adapter,
		dimensions: dimensions,
		retry:      retry,
	}
}

// NewClientWithAPIs creates a client over caller-supplied provider surfaces.
// Used by tests to substitute fakes.
func NewClientWithAPIs(embeddings EmbeddingAPI, chat ChatAPI, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		embeddings: embeddings,
		chat:       chat,
		dimensions: dimensions,
		retry:      RetryPolicy{MaxAttempts: 1},
	}
}

// EmbedBatch embeds all texts, splitting into provider-sized batches and
// retrying transient failures per batch. Results are returned in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var vectors [][]float32
		err := c.retry.Do(ctx, func(ctx context.Context) error {
			var callErr error
			vectors, callErr = c.embeddings.CreateEmbeddings(ctx, batch)
			return callErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}

		for _, v := range vectors {
			if len(v) != c.dimensions {
				return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(v))
			}
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Embed embeds a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// CreateChatCompletion runs a single chat completion. Chat calls are not
// retried; the orchestrator degrades the turn on failure. Only embedding
// calls carry the retry policy.
func (c *Client) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, req)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	return resp, nil
}
