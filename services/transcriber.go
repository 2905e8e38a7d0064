package services

import (
	"bytes"
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const audioTranscribeModel = openai.Whisper1

// Transcriber converts recorded audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// openAITranscriber calls the hosted Whisper endpoint. Provider failures
// come back as *ProviderError with KindTranscription; the caller decides
// whether to surface them or degrade to an empty transcript.
type openAITranscriber struct {
	client *openai.Client
}

func newOpenAITranscriber(apiKey string, httpClient *http.Client) *openAITranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &openAITranscriber{client: openai.NewClientWithConfig(cfg)}
}

func (t *openAITranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    audioTranscribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "note.mp3",
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", &ProviderError{Kind: KindTranscription, Err: err}
	}
	return resp.Text, nil
}
