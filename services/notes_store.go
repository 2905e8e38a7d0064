package services

import (
	"context"
	"fmt"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/p-kowalski/audio-notes/models"
)

// CollectionName is the single vector-store collection holding all notes.
const CollectionName = "notes"

// NoteStore is the narrow gateway the note service talks to; it keeps the
// vector-store wire details out of the business logic and lets tests swap
// in an in-memory implementation.
type NoteStore interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, note models.Note, vector []float32) error
	List(ctx context.Context, offset, limit int) ([]models.SearchResult, error)
	Search(ctx context.Context, vector []float32, offset, limit int) ([]models.SearchResult, error)
}

// EnsureCollection waits for the vector store to become reachable, then
// idempotently gets or creates the notes collection with cosine distance
// and the fixed embedding dimensionality. Safe to call on every startup.
func EnsureCollection(ctx context.Context, client chromago.Client, logger *zap.Logger) (chromago.Collection, error) {
	ping := func() error { return client.Heartbeat(ctx) }
	if err := waitReady(ctx, ping, 30*time.Second); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		CollectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
				chromago.NewIntAttribute("dimension", int64(EmbeddingDim)),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", CollectionName, err)
	}

	logger.Info("collection ready", zap.String("collection", CollectionName))
	return collection, nil
}

// waitReady probes the store's health with bounded exponential backoff,
// instead of a blind fixed sleep before the first request.
func waitReady(ctx context.Context, ping func() error, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return backoff.Retry(ping, backoff.WithContext(bo, ctx))
}

// chromaNoteStore implements NoteStore on a Chroma collection.
type chromaNoteStore struct {
	collection chromago.Collection
	logger     *zap.Logger
}

func NewChromaNoteStore(collection chromago.Collection, logger *zap.Logger) NoteStore {
	return &chromaNoteStore{collection: collection, logger: logger}
}

func (s *chromaNoteStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, &ProviderError{Kind: KindStore, Err: fmt.Errorf("count notes: %w", err)}
	}
	return int(count), nil
}

func (s *chromaNoteStore) Add(ctx context.Context, note models.Note, vector []float32) error {
	err := s.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(note.ID)),
		chromago.WithTexts(note.Text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
	)
	if err != nil {
		return &ProviderError{Kind: KindStore, Err: fmt.Errorf("add note %s: %w", note.ID, err)}
	}
	return nil
}

// List returns notes in internal store order without scores.
func (s *chromaNoteStore) List(ctx context.Context, offset, limit int) ([]models.SearchResult, error) {
	results, err := s.collection.Get(ctx,
		chromago.WithLimitGet(limit),
		chromago.WithOffsetGet(offset),
	)
	if err != nil {
		return nil, &ProviderError{Kind: KindStore, Err: fmt.Errorf("list notes: %w", err)}
	}

	documents := results.GetDocuments()
	out := make([]models.SearchResult, 0, len(documents))
	for _, doc := range documents {
		out = append(out, models.SearchResult{Text: doc.ContentString()})
	}
	return out, nil
}

// Search returns the nearest notes to vector, annotated with a cosine
// similarity score. Chroma has no query offset, so it over-fetches
// offset+limit results and slices.
func (s *chromaNoteStore) Search(ctx context.Context, vector []float32, offset, limit int) ([]models.SearchResult, error) {
	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(offset+limit),
	)
	if err != nil {
		return nil, &ProviderError{Kind: KindStore, Err: fmt.Errorf("query notes: %w", err)}
	}

	documentGroups := results.GetDocumentsGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return []models.SearchResult{}, nil
	}

	out := make([]models.SearchResult, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		if i < offset {
			continue
		}
		// Cosine distance to similarity.
		score := float32(1)
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			score = 1 - float32(distanceGroups[0][i])
		}
		out = append(out, models.SearchResult{Text: doc.ContentString(), Score: &score})
	}
	return out, nil
}
