package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level dcma configuration, corresponding to .dcma.yml.
type Config struct {
	Provider            ProviderType `yaml:"provider" koanf:"provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`
	OllamaBaseURL       string       `yaml:"ollama_base_url,omitempty" koanf:"ollama_base_url"`
	DataDir             string       `yaml:"data_dir" koanf:"data_dir"`
	Port                int          `yaml:"port" koanf:"port"`
	AllowAllOrigins     bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	TopK                int          `yaml:"top_k" koanf:"top_k"`
	SimilarityThreshold float64      `yaml:"similarity_threshold" koanf:"similarity_threshold"`
}
