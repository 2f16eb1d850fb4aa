package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server Server `yaml:"server"`
	Paths  Paths  `yaml:"paths"`
	Audio  Audio  `yaml:"audio"`
	Speech Speech `yaml:"speech"`
	Log    Log    `yaml:"log"`
}

// Server contains HTTP server settings
type Server struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// Paths contains directory paths for media processing
type Paths struct {
	// WorkDirectory holds request-scoped temporary files and the retained
	// output audio files.
	WorkDirectory string `yaml:"work_directory"`
}

// Audio contains audio extraction settings
type Audio struct {
	Bitrate string `yaml:"bitrate"`
}

// Speech contains recognition engine settings
type Speech struct {
	// Engine selects the recognition backend: "vosk" (local models) or
	// "openai" (remote transcription API).
	Engine string `yaml:"engine"`
	// Models maps a language identifier to its local model directory
	Models map[string]string `yaml:"models"`
}

// Log contains logging settings
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Server: Server{Addr: ":8000", MaxUploadMB: 50},
		Paths:  Paths{WorkDirectory: filepath.Join(os.TempDir(), "audio_extractor")},
		Audio:  Audio{Bitrate: "192k"},
		Speech: Speech{
			Engine: "vosk",
			Models: map[string]string{
				"zh": "vosk-model-cn-0.22",
				"en": "vosk-model-en-us-0.22",
			},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads and parses the configuration from the specified YAML file,
// filling omitted fields from defaults and applying environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults (with
// environment overrides applied) when the config file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return nil, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv lets the environment (possibly loaded from .env) override
// file-based settings.
func (c *Config) applyEnv() {
	if v := os.Getenv("EXTRACTOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("EXTRACTOR_WORK_DIR"); v != "" {
		c.Paths.WorkDirectory = v
	}
	if v := os.Getenv("EXTRACTOR_SPEECH_ENGINE"); v != "" {
		c.Speech.Engine = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
