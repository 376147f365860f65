package openai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingAPI struct {
	calls      [][]string
	dimensions int
	failures   int
	err        error
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls = append(f.calls, inputs)
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		v := make([]float32, f.dimensions)
		v[0] = float32(len(f.calls)*1000 + i)
		out[i] = v
	}
	return out, nil
}

func TestEmbedBatch_Success(t *testing.T) {
	api := &fakeEmbeddingAPI{dimensions: 1536}
	client := NewClientWithAPIs(api, nil, 1536)

	vectors, err := client.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Len(t, vectors[0], 1536)
	assert.Len(t, api.calls, 1)
}

func TestEmbedBatch_SplitsLargeInputs(t *testing.T) {
	api := &fakeEmbeddingAPI{dimensions: 8}
	client := NewClientWithAPIs(api, nil, 8)

	texts := make([]string, 300)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	vectors, err := client.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	assert.Len(t, vectors, 300)
	require.Len(t, api.calls, 3)
	assert.Len(t, api.calls[0], 128)
	assert.Len(t, api.calls[1], 128)
	assert.Len(t, api.calls[2], 44)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	client := NewClientWithAPIs(&fakeEmbeddingAPI{}, nil, 8)

	vectors, err := client.EmbedBatch(context.Background(), nil)

	assert.Nil(t, vectors)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedBatch_WrongDimensions(t *testing.T) {
	api := &fakeEmbeddingAPI{dimensions: 512}
	client := NewClientWithAPIs(api, nil, 1536)

	vectors, err := client.EmbedBatch(context.Background(), []string{"alpha"})

	assert.Nil(t, vectors)
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestEmbedBatch_RetriesRateLimit(t *testing.T) {
	api := &fakeEmbeddingAPI{
		dimensions: 8,
		failures:   2,
		err:        &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"},
	}
	client := NewClientWithAPIs(api, nil, 8)
	client.retry = RetryPolicy{MaxAttempts: 5, Retryable: IsTransient}

	vectors, err := client.EmbedBatch(context.Background(), []string{"alpha"})

	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Len(t, api.calls, 3)
}

func TestEmbedBatch_DoesNotRetryClientError(t *testing.T) {
	api := &fakeEmbeddingAPI{
		dimensions: 8,
		failures:   10,
		err:        &openai.APIError{HTTPStatusCode: 400, Message: "bad request"},
	}
	client := NewClientWithAPIs(api, nil, 8)
	client.retry = RetryPolicy{MaxAttempts: 5, Retryable: IsTransient}

	_, err := client.EmbedBatch(context.Background(), []string{"alpha"})

	assert.Error(t, err)
	assert.Len(t, api.calls, 1)
}

func TestEmbed_Single(t *testing.T) {
	api := &fakeEmbeddingAPI{dimensions: 8}
	client := NewClientWithAPIs(api, nil, 8)

	vector, err := client.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Len(t, vector, 8)

	_, err = client.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

type fakeChatAPI struct {
	calls    int
	failures int
	err      error
	resp     openai.ChatCompletionResponse
}

func (f *fakeChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return openai.ChatCompletionResponse{}, f.err
	}
	return f.resp, nil
}

func TestCreateChatCompletion_Success(t *testing.T) {
	api := &fakeChatAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "ok"}},
			},
		},
	}
	client := NewClientWithAPIs(nil, api, 8)

	resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
	assert.Equal(t, 1, api.calls)
}

func TestCreateChatCompletion_NoRetryOnServerError(t *testing.T) {
	api := &fakeChatAPI{
		failures: 1,
		err:      &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"},
	}
	client := NewClientWithAPIs(nil, api, 8)
	client.retry = RetryPolicy{MaxAttempts: 3, Retryable: IsTransient}

	// A transient chat failure surfaces after exactly one attempt; the
	// retry policy applies to embeddings only.
	_, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{})

	assert.Error(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&openai.APIError{HTTPStatusCode: 429}))
	assert.True(t, IsTransient(&openai.APIError{HTTPStatusCode: 500}))
	assert.True(t, IsTransient(&openai.APIError{HTTPStatusCode: 502}))
	assert.False(t, IsTransient(&openai.APIError{HTTPStatusCode: 401}))
	assert.False(t, IsTransient(errors.New("plain error")))
}
