package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var supportedAudioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}

func isSupportedAudio(path string) bool {
	return supportedAudioExts[strings.ToLower(filepath.Ext(path))]
}

// InboxWatcher watches a drop directory for audio files and ingests each
// one as a note: transcribe, embed, save. Files already ingested (same
// content hash) are skipped, so editor-style double write events are
// harmless.
type InboxWatcher struct {
	dir     string
	service NoteService
	logger  *zap.Logger
	seen    map[string]bool
}

func NewInboxWatcher(dir string, service NoteService, logger *zap.Logger) *InboxWatcher {
	return &InboxWatcher{
		dir:     dir,
		service: service,
		logger:  logger,
		seen:    make(map[string]bool),
	}
}

// Scan ingests audio files already present in the inbox directory.
func (w *InboxWatcher) Scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error("read inbox directory", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !isSupportedAudio(path) {
			continue
		}
		w.processFile(ctx, path)
	}
}

// Watch blocks until ctx is cancelled, ingesting audio files as they
// appear in the inbox directory.
func (w *InboxWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching audio inbox", zap.String("dir", w.dir))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSupportedAudio(event.Name) {
				continue
			}
			// Editors and copy tools emit Create followed by one or more
			// Writes; the hash dedup below collapses them.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.processFile(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox watcher", zap.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processFile transcribes and saves one audio file. Transcription failures
// are logged and skipped; a silent recording (empty transcript) is not
// saved either.
func (w *InboxWatcher) processFile(ctx context.Context, path string) {
	audio, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("read inbox file", zap.String("path", path), zap.Error(err))
		return
	}

	hash := HashContent(audio)
	if w.seen[hash] {
		return
	}

	transcript, err := w.service.Transcribe(ctx, "", audio)
	if err != nil {
		w.logger.Warn("transcribe inbox file", zap.String("path", path), zap.Error(err))
		return
	}
	if strings.TrimSpace(transcript) == "" {
		w.logger.Info("inbox file produced empty transcript, skipping", zap.String("path", path))
		w.seen[hash] = true
		return
	}

	note, err := w.service.SaveNote(ctx, "", transcript)
	if err != nil {
		w.logger.Error("save inbox note", zap.String("path", path), zap.Error(err))
		return
	}

	w.seen[hash] = true
	w.logger.Info("ingested inbox note",
		zap.String("path", path),
		zap.String("id", note.ID),
	)
}
