package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
	"github.com/ttutta/dcma/internal/embeddings"
)

// Search defaults, applied when the caller passes zero values.
const (
	DefaultTopK                = 10
	DefaultSimilarityThreshold = 0.3
)

// Service computes and persists embeddings for catalog records and
// serves semantic queries over both catalogs.
type Service struct {
	embedder  embeddings.Embedder
	index     *Index
	docs      *catalog.Store[domains.Document]
	convs     *catalog.Store[conventions.Convention]
	topK      int
	threshold float64
}

// NewService wires the search service over the two catalog stores.
func NewService(embedder embeddings.Embedder, index *Index, docs *catalog.Store[domains.Document], convs *catalog.Store[conventions.Convention]) *Service {
	return &Service{
		embedder:  embedder,
		index:     index,
		docs:      docs,
		convs:     convs,
		topK:      DefaultTopK,
		threshold: DefaultSimilarityThreshold,
	}
}

// SetDefaults overrides the built-in top-k and threshold defaults with
// configured values. Zero values keep the current defaults.
func (s *Service) SetDefaults(topK int, threshold float64) {
	if topK > 0 {
		s.topK = topK
	}
	if threshold > 0 {
		s.threshold = threshold
	}
}

// Search embeds the query, collects nearest neighbors from both
// catalogs above the similarity threshold and returns the merged top-k,
// ordered by similarity descending. topK <= 0 and threshold <= 0 select
// the service defaults. An empty result set is not an error.
func (s *Service) Search(ctx context.Context, query string, topK int, threshold float64) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, catalog.Invalid("query", "must not be empty")
	}
	if topK <= 0 {
		topK = s.topK
	}
	if threshold <= 0 {
		threshold = s.threshold
	}

	vec, err := embeddings.EmbedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches := make([]Match, 0, topK)

	docHits, err := s.index.QueryDocuments(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("querying domain documents: %w", err)
	}
	for _, hit := range docHits {
		if float64(hit.Similarity) <= threshold {
			continue
		}
		rec, err := s.docs.FindByIdentifier(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Deleted() {
			continue
		}
		matches = append(matches, Match{
			DocumentType: TypeDomainDocument,
			DocumentID:   hit.ID,
			Similarity:   hit.Similarity,
			Content:      domains.View(rec),
		})
	}

	convHits, err := s.index.QueryConventions(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("querying project conventions: %w", err)
	}
	for _, hit := range convHits {
		if float64(hit.Similarity) <= threshold {
			continue
		}
		rec, err := s.convs.FindByIdentifier(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Deleted() {
			continue
		}
		matches = append(matches, Match{
			DocumentType: TypeProjectConvention,
			DocumentID:   hit.ID,
			Similarity:   hit.Similarity,
			Content:      conventions.View(rec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return &Result{Query: query, Matches: matches, TotalCount: len(matches)}, nil
}

// DocumentSaved is the domain catalog's save hook. It embeds the new
// version, persists the vector and updates the index. Failures are
// logged and swallowed: the saved document stands with or without an
// embedding, and the backfill batch picks up the gap later.
func (s *Service) DocumentSaved(ctx context.Context, rec *catalog.Record[domains.Document]) {
	text := DocumentText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)

	vec, err := embeddings.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		log.Printf("search: embedding domain document %s v%d: %v", rec.Key, rec.Version, err)
		return
	}
	if err := s.docs.UpdateEmbedding(ctx, rec.Identifier, vec); err != nil {
		log.Printf("search: storing embedding for domain document %s v%d: %v", rec.Key, rec.Version, err)
		return
	}
	if err := s.index.UpsertDocument(ctx, rec.Identifier, text, vec); err != nil {
		log.Printf("search: indexing domain document %s v%d: %v", rec.Key, rec.Version, err)
	}
}

// ConventionSaved is the convention catalog's save hook.
func (s *Service) ConventionSaved(ctx context.Context, rec *catalog.Record[conventions.Convention]) {
	text := ConventionText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)

	vec, err := embeddings.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		log.Printf("search: embedding convention %s v%d: %v", rec.Key, rec.Version, err)
		return
	}
	if err := s.convs.UpdateEmbedding(ctx, rec.Identifier, vec); err != nil {
		log.Printf("search: storing embedding for convention %s v%d: %v", rec.Key, rec.Version, err)
		return
	}
	if err := s.index.UpsertConvention(ctx, rec.Identifier, text, vec); err != nil {
		log.Printf("search: indexing convention %s v%d: %v", rec.Key, rec.Version, err)
	}
}

// DocumentsDeleted is the domain catalog's delete hook; it evicts the
// soft-deleted rows from the index.
func (s *Service) DocumentsDeleted(ctx context.Context, identifiers []string) {
	if err := s.index.RemoveDocuments(ctx, identifiers); err != nil {
		log.Printf("search: evicting %d domain documents: %v", len(identifiers), err)
	}
}

// ConventionsDeleted is the convention catalog's delete hook.
func (s *Service) ConventionsDeleted(ctx context.Context, identifiers []string) {
	if err := s.index.RemoveConventions(ctx, identifiers); err != nil {
		log.Printf("search: evicting %d conventions: %v", len(identifiers), err)
	}
}

// Rebuild loads every live embedded row from both catalogs into the
// index. Run at startup; SQLite is the source of truth.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	total := 0

	docs, err := s.docs.WithEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading embedded domain documents: %w", err)
	}
	for _, rec := range docs {
		text := DocumentText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)
		if err := s.index.UpsertDocument(ctx, rec.Identifier, text, rec.Embedding); err != nil {
			return total, fmt.Errorf("indexing domain document %s: %w", rec.Identifier, err)
		}
		total++
	}

	convs, err := s.convs.WithEmbeddings(ctx)
	if err != nil {
		return total, fmt.Errorf("loading embedded conventions: %w", err)
	}
	for _, rec := range convs {
		text := ConventionText(rec.Key[0], rec.Key[1], rec.Key[2], rec.Payload)
		if err := s.index.UpsertConvention(ctx, rec.Identifier, text, rec.Embedding); err != nil {
			return total, fmt.Errorf("indexing convention %s: %w", rec.Identifier, err)
		}
		total++
	}

	return total, nil
}
