package search

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionDocuments   = "domain_documents"
	collectionConventions = "project_conventions"
)

// Index is the in-memory vector index, one chromem collection per
// catalog. All entries carry precomputed embeddings; the embedding
// function is only the collection's fallback and never runs in the
// normal path.
type Index struct {
	docs  *chromem.Collection
	convs *chromem.Collection
}

// NewIndex creates an empty index.
func NewIndex(embedFn chromem.EmbeddingFunc) (*Index, error) {
	database := chromem.NewDB()

	docs, err := database.CreateCollection(collectionDocuments, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("creating %s collection: %w", collectionDocuments, err)
	}
	convs, err := database.CreateCollection(collectionConventions, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("creating %s collection: %w", collectionConventions, err)
	}

	return &Index{docs: docs, convs: convs}, nil
}

// UpsertDocument adds or replaces a domain document entry.
func (ix *Index) UpsertDocument(ctx context.Context, id, text string, vector []float32) error {
	return ix.upsert(ctx, ix.docs, id, text, vector)
}

// UpsertConvention adds or replaces a project convention entry.
func (ix *Index) UpsertConvention(ctx context.Context, id, text string, vector []float32) error {
	return ix.upsert(ctx, ix.convs, id, text, vector)
}

func (ix *Index) upsert(ctx context.Context, col *chromem.Collection, id, text string, vector []float32) error {
	return col.AddDocuments(ctx, []chromem.Document{{
		ID:        id,
		Content:   text,
		Embedding: vector,
	}}, 1)
}

// RemoveDocuments evicts domain document entries by identifier. Unknown
// identifiers are ignored.
func (ix *Index) RemoveDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return ix.docs.Delete(ctx, nil, nil, ids...)
}

// RemoveConventions evicts project convention entries by identifier.
func (ix *Index) RemoveConventions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return ix.convs.Delete(ctx, nil, nil, ids...)
}

// QueryDocuments returns up to n nearest domain document entries.
func (ix *Index) QueryDocuments(ctx context.Context, vector []float32, n int) ([]chromem.Result, error) {
	return query(ctx, ix.docs, vector, n)
}

// QueryConventions returns up to n nearest project convention entries.
func (ix *Index) QueryConventions(ctx context.Context, vector []float32, n int) ([]chromem.Result, error) {
	return query(ctx, ix.convs, vector, n)
}

func query(ctx context.Context, col *chromem.Collection, vector []float32, n int) ([]chromem.Result, error) {
	// chromem rejects nResults larger than the collection.
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}
	return col.QueryEmbedding(ctx, vector, n, nil, nil)
}
