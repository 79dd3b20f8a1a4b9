// Package embeddings abstracts the text→vector providers. The model
// choice is a configuration concern; everything above this package sees
// only the Embedder interface.
package embeddings

import "context"

// Embedder generates fixed-length embedding vectors for text.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbedOne is a convenience wrapper for single-text callers.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, &ProviderError{Provider: e.Name(), Message: "provider returned no embedding"}
	}
	return vecs[0], nil
}
