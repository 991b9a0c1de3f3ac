// Package config loads gateway configuration from the environment and the
// YAML model catalog.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"modelgate/internal/catalog"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Fallback FallbackConfig
	Log      LogConfig

	// CatalogPath points at the YAML credential/model catalog. Empty means
	// no catalog; every request then uses the fallback provider.
	CatalogPath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	MasterKey       string
	MetricsEnabled  bool
	MetricsEndpoint string
	BodySizeLimit   int64
}

// FallbackConfig names the provider serving unroutable model ids.
type FallbackConfig struct {
	APIKey  string // OpenAI-compatible API key
	BaseURL string // empty means the public OpenAI API
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Format string // "text" or "json"
	Level  string // "debug", "info", "warn", "error"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MasterKey:       os.Getenv("MASTER_KEY"),
			MetricsEnabled:  getEnvBool("METRICS_ENABLED", false),
			MetricsEndpoint: getEnv("METRICS_ENDPOINT", "/metrics"),
		},
		Fallback: FallbackConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Log: LogConfig{
			Format: getEnv("LOG_FORMAT", "text"),
			Level:  getEnv("LOG_LEVEL", "info"),
		},
		CatalogPath: os.Getenv("CATALOG_PATH"),
	}

	if v := os.Getenv("BODY_SIZE_LIMIT"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BODY_SIZE_LIMIT %q: %w", v, err)
		}
		cfg.Server.BodySizeLimit = limit
	}

	if cfg.Fallback.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the fallback provider")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// Catalog is the YAML document shape for credentials and model routes.
type Catalog struct {
	Credentials []catalog.Credential `yaml:"credentials"`
	Models      []catalog.Model      `yaml:"models"`
}

// LoadCatalog reads the YAML catalog and seeds an in-memory store. Secrets
// in the file support ${VAR} expansion so keys stay out of the catalog.
func LoadCatalog(path string) (*catalog.MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc Catalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	store := catalog.NewMemoryStore()
	seen := make(map[string]struct{}, len(doc.Credentials))
	for _, cred := range doc.Credentials {
		if cred.ID == "" {
			return nil, fmt.Errorf("catalog credential without id")
		}
		if _, dup := seen[cred.ID]; dup {
			return nil, fmt.Errorf("duplicate credential id %q", cred.ID)
		}
		seen[cred.ID] = struct{}{}
		cred.Secret = os.ExpandEnv(cred.Secret)
		store.PutCredential(cred)
	}

	for _, model := range doc.Models {
		if model.ID == "" || model.CredentialID == "" {
			return nil, fmt.Errorf("catalog model %q needs id and credential_id", model.ID)
		}
		if _, ok := seen[model.CredentialID]; !ok {
			return nil, fmt.Errorf("model %q references unknown credential %q", model.ID, model.CredentialID)
		}
		store.PutModel(model)
	}
	return store, nil
}
