package services

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	embeddingModel = openai.LargeEmbedding3
	// EmbeddingDim is the fixed output dimensionality requested from the
	// embedding model; every stored vector has exactly this length.
	EmbeddingDim = 3072
)

// Embedder converts a text string into a fixed-length vector. Callers are
// responsible for keeping the text within the provider's input limit; no
// chunking or truncation happens here.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type openAIEmbedder struct {
	client *openai.Client
}

func newOpenAIEmbedder(apiKey string, httpClient *http.Client) *openAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &openAIEmbedder{client: openai.NewClientWithConfig(cfg)}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      embeddingModel,
		Dimensions: EmbeddingDim,
	})
	if err != nil {
		return nil, &ProviderError{Kind: KindEmbedding, Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &ProviderError{Kind: KindEmbedding, Err: fmt.Errorf("empty embedding response")}
	}
	vec := resp.Data[0].Embedding
	if len(vec) != EmbeddingDim {
		return nil, &ProviderError{
			Kind: KindEmbedding,
			Err:  fmt.Errorf("expected %d dimensions, got %d", EmbeddingDim, len(vec)),
		}
	}
	return vec, nil
}

func (e *openAIEmbedder) Dimension() int {
	return EmbeddingDim
}

// ProviderFactory builds the speech and embedding clients for a given API
// key. Sessions may carry their own key, so clients are constructed per
// resolved key rather than once at startup.
type ProviderFactory interface {
	Transcriber(apiKey string) Transcriber
	Embedder(apiKey string) Embedder
}

// OpenAIFactory is the production ProviderFactory backed by the OpenAI API.
type OpenAIFactory struct {
	HTTPClient *http.Client
}

func (f *OpenAIFactory) Transcriber(apiKey string) Transcriber {
	return newOpenAITranscriber(apiKey, f.HTTPClient)
}

func (f *OpenAIFactory) Embedder(apiKey string) Embedder {
	return newOpenAIEmbedder(apiKey, f.HTTPClient)
}
