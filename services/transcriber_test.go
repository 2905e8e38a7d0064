package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeReturnsTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task":"transcribe","language":"pl","duration":2.4,"text":"kup mleko","segments":[]}`))
	}))
	defer server.Close()

	transcriber := newOpenAITranscriber("sk-test", testHTTPClient(t, server))

	text, err := transcriber.Transcribe(context.Background(), []byte("fake mp3 bytes"))
	require.NoError(t, err)
	assert.Equal(t, "kup mleko", text)
}

func TestTranscribeSilentAudioYieldsEmptyString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task":"transcribe","language":"pl","duration":1.0,"text":"","segments":[]}`))
	}))
	defer server.Close()

	transcriber := newOpenAITranscriber("sk-test", testHTTPClient(t, server))

	text, err := transcriber.Transcribe(context.Background(), []byte("silence"))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestTranscribeProviderErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	transcriber := newOpenAITranscriber("sk-bad", testHTTPClient(t, server))

	text, err := transcriber.Transcribe(context.Background(), []byte("fake mp3 bytes"))
	require.Error(t, err)
	assert.Empty(t, text)
	assert.True(t, IsKind(err, KindTranscription))
}
