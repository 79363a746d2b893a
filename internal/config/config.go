package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string
	ModelName    string
	DataDir      string
	CatalogPath  string
	SessionKey   string
	Debug        bool
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	return &Config{
		GeminiAPIKey: apiKey,
		ModelName:    envOr("QUESTLINE_MODEL", "gemini-2.5-flash"),
		DataDir:      envOr("QUESTLINE_DATA_DIR", ".questline"),
		CatalogPath:  os.Getenv("QUESTLINE_CATALOG"),
		SessionKey:   envOr("QUESTLINE_SESSION", "default"),
		Debug:        os.Getenv("QUESTLINE_DEBUG") != "",
	}, nil
}

func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

func (c *Config) ChipDir() string {
	return filepath.Join(c.DataDir, "chips")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
