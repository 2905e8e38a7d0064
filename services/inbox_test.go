package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/p-kowalski/audio-notes/models"
)

// inboxService records saved notes and returns a fixed transcript.
type inboxService struct {
	mu         sync.Mutex
	transcript string
	saved      []string
}

func (s *inboxService) Transcribe(context.Context, string, []byte) (string, error) {
	return s.transcript, nil
}

func (s *inboxService) SaveNote(_ context.Context, _ string, text string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, text)
	return models.Note{ID: "id", Text: text}, nil
}

func (s *inboxService) ListNotes(context.Context, int, int) ([]models.SearchResult, error) {
	return nil, nil
}

func (s *inboxService) SearchNotes(context.Context, string, string, int, int) ([]models.SearchResult, error) {
	return nil, nil
}

func (s *inboxService) CountNotes(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved), nil
}

func (s *inboxService) savedNotes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.saved...)
}

func TestIsSupportedAudio(t *testing.T) {
	assert.True(t, isSupportedAudio("note.mp3"))
	assert.True(t, isSupportedAudio("/inbox/Recording.WAV"))
	assert.True(t, isSupportedAudio("memo.m4a"))
	assert.False(t, isSupportedAudio("notes.txt"))
	assert.False(t, isSupportedAudio("archive.pdf"))
}

func TestScanIngestsExistingAudioFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memo.mp3"), []byte("audio one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skipped.txt"), []byte("not audio"), 0o644))

	svc := &inboxService{transcript: "buy milk"}
	watcher := NewInboxWatcher(dir, svc, zap.NewNop())
	watcher.Scan(context.Background())

	assert.Equal(t, []string{"buy milk"}, svc.savedNotes())
}

func TestProcessFileDeduplicatesByContentHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio one"), 0o644))

	svc := &inboxService{transcript: "buy milk"}
	watcher := NewInboxWatcher(dir, svc, zap.NewNop())

	watcher.processFile(context.Background(), path)
	watcher.processFile(context.Background(), path)

	assert.Len(t, svc.savedNotes(), 1, "identical content must be ingested once")
}

func TestProcessFileSkipsEmptyTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silence.mp3")
	require.NoError(t, os.WriteFile(path, []byte("silent audio"), 0o644))

	svc := &inboxService{transcript: ""}
	watcher := NewInboxWatcher(dir, svc, zap.NewNop())
	watcher.processFile(context.Background(), path)

	assert.Empty(t, svc.savedNotes())
}

func TestWatchIngestsDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	svc := &inboxService{transcript: "call mom"}
	watcher := NewInboxWatcher(dir, svc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watcher.Watch(ctx)
	}()

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.mp3"), []byte("fresh audio"), 0o644))

	require.Eventually(t, func() bool {
		return len(svc.savedNotes()) == 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}
