package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/p-kowalski/audio-notes/models"
)

// NoteService defines the note workflows the controller drives.
type NoteService interface {
	Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error)
	SaveNote(ctx context.Context, apiKey, text string) (models.Note, error)
	ListNotes(ctx context.Context, offset, limit int) ([]models.SearchResult, error)
	SearchNotes(ctx context.Context, apiKey, query string, offset, limit int) ([]models.SearchResult, error)
	CountNotes(ctx context.Context) (int, error)
}

// noteServiceImpl holds the dependencies it needs to do its job.
type noteServiceImpl struct {
	store     NoteStore
	providers ProviderFactory
	serverKey string
	logger    *zap.Logger
}

// NewNoteService creates a new note service instance. serverKey is the
// API key resolved at startup; it may be empty, in which case every call
// must carry a session-supplied key.
func NewNoteService(store NoteStore, providers ProviderFactory, serverKey string, logger *zap.Logger) NoteService {
	return &noteServiceImpl{
		store:     store,
		providers: providers,
		serverKey: serverKey,
		logger:    logger,
	}
}

// resolveKey prefers the session's key over the server's.
func (s *noteServiceImpl) resolveKey(apiKey string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if s.serverKey != "" {
		return s.serverKey, nil
	}
	return "", ErrMissingAPIKey
}

func (s *noteServiceImpl) Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error) {
	key, err := s.resolveKey(apiKey)
	if err != nil {
		return "", err
	}

	text, err := s.providers.Transcriber(key).Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}

	s.logger.Info("transcribed audio", zap.Int("audio_bytes", len(audio)), zap.Int("transcript_len", len(text)))
	return text, nil
}

func (s *noteServiceImpl) SaveNote(ctx context.Context, apiKey, text string) (models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return models.Note{}, fmt.Errorf("note text is empty")
	}

	key, err := s.resolveKey(apiKey)
	if err != nil {
		return models.Note{}, err
	}

	vector, err := s.providers.Embedder(key).Embed(ctx, text)
	if err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		ID:   uuid.New().String(),
		Text: text,
	}
	if err := s.store.Add(ctx, note, vector); err != nil {
		return models.Note{}, err
	}

	s.logger.Info("saved note", zap.String("id", note.ID), zap.Int("text_len", len(text)))
	return note, nil
}

func (s *noteServiceImpl) ListNotes(ctx context.Context, offset, limit int) ([]models.SearchResult, error) {
	return s.store.List(ctx, normalizeOffset(offset), normalizeLimit(limit))
}

func (s *noteServiceImpl) SearchNotes(ctx context.Context, apiKey, query string, offset, limit int) ([]models.SearchResult, error) {
	key, err := s.resolveKey(apiKey)
	if err != nil {
		return nil, err
	}

	vector, err := s.providers.Embedder(key).Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.store.Search(ctx, vector, normalizeOffset(offset), normalizeLimit(limit))
}

func (s *noteServiceImpl) CountNotes(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
