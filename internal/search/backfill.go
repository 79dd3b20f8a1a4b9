package search

import (
	"context"
	"fmt"
	"log"

	"github.com/ttutta/dcma/internal/embeddings"
)

// BackfillStats summarizes one backfill run.
type BackfillStats struct {
	Processed int
	Succeeded int
	Failed    int
}

// ProgressFunc receives the running processed count against the total.
type ProgressFunc func(processed, total int)

// Backfill computes and stores embeddings for every live row that lacks
// one, in both catalogs. Individual failures are logged and counted but
// never stop the run. progress may be nil.
func (s *Service) Backfill(ctx context.Context, progress ProgressFunc) (*BackfillStats, error) {
	docs, err := s.docs.MissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading domain documents without embeddings: %w", err)
	}
	convs, err := s.convs.MissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading conventions without embeddings: %w", err)
	}

	total := len(docs) + len(convs)
	stats := &BackfillStats{}
	report := func() {
		if progress != nil {
			progress(stats.Processed, total)
		}
	}

	for _, rec := range docs {
		stats.Processed++
		text := DocumentText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)
		if err := s.embedAndStore(ctx, text, rec.Identifier, true); err != nil {
			log.Printf("search: backfill domain document %s v%d: %v", rec.Key, rec.Version, err)
			stats.Failed++
		} else {
			stats.Succeeded++
		}
		report()
	}

	for _, rec := range convs {
		stats.Processed++
		text := ConventionText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)
		if err := s.embedAndStore(ctx, text, rec.Identifier, false); err != nil {
			log.Printf("search: backfill convention %s v%d: %v", rec.Key, rec.Version, err)
			stats.Failed++
		} else {
			stats.Succeeded++
		}
		report()
	}

	return stats, nil
}

func (s *Service) embedAndStore(ctx context.Context, text, identifier string, isDocument bool) error {
	vec, err := embeddings.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		return err
	}
	if isDocument {
		if err := s.docs.UpdateEmbedding(ctx, identifier, vec); err != nil {
			return err
		}
		return s.index.UpsertDocument(ctx, identifier, text, vec)
	}
	if err := s.convs.UpdateEmbedding(ctx, identifier, vec); err != nil {
		return err
	}
	return s.index.UpsertConvention(ctx, identifier, text, vec)
}
