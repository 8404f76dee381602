package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ChatConfig selects and authenticates the model backend.
type ChatConfig struct {
	Provider  string `json:"provider"`
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	AccountID string `json:"account_id"`
	TimeoutMS int    `json:"timeout_ms"`
}

// RuntimeConfig holds engine knobs.
type RuntimeConfig struct {
	MaxSteps  int    `json:"max_steps"`
	HistoryDB string `json:"history_db"`
}

type Config struct {
	Chat    ChatConfig    `json:"chat"`
	Runtime RuntimeConfig `json:"runtime"`
}

func Default() Config {
	return Config{
		Chat: ChatConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			TimeoutMS: 120000,
		},
		Runtime: RuntimeConfig{
			MaxSteps: 64,
		},
	}
}

// Load reads configuration in layers: defaults, then the global file, then
// the given path (or MDIT_CONFIG_PATH), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if global := globalConfigPath(); global != "" {
		if err := mergeFromFile(&cfg, global); err != nil {
			return Config{}, err
		}
	}

	resolved := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("MDIT_CONFIG_PATH")); envPath != "" {
		resolved = envPath
	}
	if err := mergeFromFile(&cfg, resolved); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mdit", "agent.json")
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MDIT_API_KEY")); v != "" {
		cfg.Chat.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" && cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("MDIT_MODEL")); v != "" {
		cfg.Chat.Model = v
	}
}

func normalize(cfg *Config) error {
	cfg.Chat.Provider = strings.TrimSpace(cfg.Chat.Provider)
	cfg.Chat.Model = strings.TrimSpace(cfg.Chat.Model)
	if cfg.Chat.Model == "" {
		return fmt.Errorf("chat.model is empty")
	}
	if cfg.Runtime.MaxSteps <= 0 {
		cfg.Runtime.MaxSteps = Default().Runtime.MaxSteps
	}
	if cfg.Runtime.HistoryDB == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.Runtime.HistoryDB = filepath.Join(home, ".mdit", "history.db")
		}
	}
	return nil
}
