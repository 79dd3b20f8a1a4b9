package config

// modelDimensions maps known embedding models to their vector sizes.
// Unknown models need embedding_dimensions set explicitly.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
}

// defaultModels maps each provider to its default embedding model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "text-embedding-3-small",
	ProviderOllama: "nomic-embed-text",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		DataDir:             ".dcma",
		Port:                8080,
		TopK:                10,
		SimilarityThreshold: 0.3,
	}
}

// DimensionsFor returns the vector size for a known model, or 0.
func DimensionsFor(model string) int {
	return modelDimensions[model]
}
