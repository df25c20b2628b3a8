package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DatasetConfig selects where the corpus is loaded from.
type DatasetConfig struct {
	Source      string `yaml:"source"`
	Name        string `yaml:"name"`
	Config      string `yaml:"config"`
	Split       string `yaml:"split"`
	Path        string `yaml:"path"`
	BaseURL     string `yaml:"base_url"`
	TokenEnv    string `yaml:"token_env"`
	MaxRows     int    `yaml:"max_rows"`
	PageSize    int    `yaml:"page_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects the document store implementation.
type IndexConfig struct {
	Type string `yaml:"type"`
}

// RetrieverConfig configures how many documents are passed to the generator.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// GeneratorConfig holds configuration for the OpenAI-compatible model endpoint.
type GeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Debug     bool            `yaml:"debug"`
	LogFile   string          `yaml:"log_file"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Index     IndexConfig     `yaml:"index"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/recipe-chat/config.yaml.
// If neither exists, it writes defaults to ~/.config/recipe-chat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects component types that cannot be assembled.
func (c *AppConfig) Validate() error {
	switch c.Dataset.Source {
	case "hub":
	case "file":
		if c.Dataset.Path == "" {
			return errors.New("dataset.path is required for file source")
		}
	default:
		return fmt.Errorf("unknown dataset source: %s", c.Dataset.Source)
	}
	switch c.Index.Type {
	case "bleve", "memory":
	default:
		return fmt.Errorf("unknown index type: %s", c.Index.Type)
	}
	if c.Retriever.TopK < 0 {
		return fmt.Errorf("retriever.top_k must not be negative, got %d", c.Retriever.TopK)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recipe-chat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LogFile == "" {
		cfg.LogFile = "recipe-chat.log"
	}
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = "hub"
	}
	if cfg.Dataset.Name == "" {
		cfg.Dataset.Name = "HC-85/open-food-facts"
	}
	if cfg.Dataset.Config == "" {
		cfg.Dataset.Config = "default"
	}
	if cfg.Dataset.Split == "" {
		cfg.Dataset.Split = "train"
	}
	if cfg.Dataset.BaseURL == "" {
		cfg.Dataset.BaseURL = "https://datasets-server.huggingface.co"
	}
	if cfg.Dataset.TokenEnv == "" {
		cfg.Dataset.TokenEnv = "HF_TOKEN"
	}
	if cfg.Dataset.PageSize == 0 {
		cfg.Dataset.PageSize = 100
	}
	if cfg.Dataset.TimeoutSecs == 0 {
		cfg.Dataset.TimeoutSecs = 30
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "bleve"
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://router.huggingface.co/v1"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "HF_TOKEN"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "mistralai/Mistral-7B-Instruct-v0.1"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 1024
	}
	// a negative value disables the timeout
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 120
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
}
