package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .dcma.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to dcma! Let's configure your catalog server.")
	fmt.Println()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Embedding model.
	modelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaultModels[provider],
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	dimensions := DimensionsFor(model)
	if dimensions == 0 {
		dimPrompt := promptui.Prompt{
			Label: "Embedding dimensions",
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n <= 0 {
					return fmt.Errorf("must be a positive integer")
				}
				return nil
			},
		}
		dimStr, err := dimPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding dimensions: %w", err)
		}
		dimensions, _ = strconv.Atoi(dimStr)
	}

	// 3. Ollama base URL when relevant.
	ollamaBaseURL := ""
	if provider == ProviderOllama {
		urlPrompt := promptui.Prompt{
			Label:   "Ollama base URL",
			Default: "http://localhost:11434",
		}
		ollamaBaseURL, err = urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("ollama base url: %w", err)
		}
	}

	// 4. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database location)",
		Default: ".dcma",
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: "8080",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("must be a valid port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := &Config{
		Provider:            provider,
		EmbeddingModel:      model,
		EmbeddingDimensions: dimensions,
		OllamaBaseURL:       ollamaBaseURL,
		DataDir:             dataDir,
		Port:                port,
		TopK:                10,
		SimilarityThreshold: 0.3,
	}

	if envVar := APIKeyEnvVar(provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running dcma server.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
