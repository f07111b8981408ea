package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/pkg/errors"
)

// AppDir is the directory under the user's home holding config and state.
const AppDir = ".career-tailor"

// Environment variables that override the config file.
const (
	EnvAPIKey      = "ANTHROPIC_API_KEY"
	EnvDatabaseURL = "CAREER_TAILOR_DATABASE_URL"
)

// Defaults applied by Validate.
const (
	DefaultMaxTokens                    = 4096
	DefaultRequestTimeoutSeconds        = 120
	DefaultStatementsPerMissingPosition = 2
	DefaultServerAddr                   = ":8080"
	DefaultOutputDir                    = "./applications"
)

// Config represents the application configuration.
type Config struct {
	Name                  string         `json:"name"`
	AnthropicAPIKey       string         `json:"anthropic_api_key"`
	RepositoryLocation    string         `json:"repository_location"`
	Models                ModelsConfig   `json:"models,omitempty"`
	MaxTokens             int            `json:"max_tokens,omitempty"`
	RequestTimeoutSeconds int            `json:"request_timeout_seconds,omitempty"`
	Storage               StorageConfig  `json:"storage"`
	Matching              MatchingConfig `json:"matching"`
	Pandoc                PandocConfig   `json:"pandoc"`
	Server                ServerConfig   `json:"server"`
	Defaults              DefaultConfig  `json:"defaults"`

	dir string
}

// ModelsConfig holds model selection.
type ModelsConfig struct {
	Generation string `json:"generation,omitempty"`
}

// StorageConfig locates saved analyses and pending positions. When
// DatabaseURL is set, analyses are kept in PostgreSQL instead of HistoryDir.
type StorageConfig struct {
	HistoryDir  string `json:"history_dir,omitempty"`
	PendingPath string `json:"pending_path,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
}

// MatchingConfig tunes how matched statements are post-processed.
type MatchingConfig struct {
	RepairCoverage               bool `json:"repair_coverage"`
	StatementsPerMissingPosition int  `json:"statements_per_missing_position,omitempty"`
	MinRelevance                 int  `json:"min_relevance,omitempty"`
}

// PandocConfig holds pandoc-related configuration. Both paths are optional;
// pandoc's default template is used when TemplatePath is empty.
type PandocConfig struct {
	TemplatePath string `json:"template_path,omitempty"`
	ClassFile    string `json:"class_file,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// DefaultDir returns ~/.career-tailor.
func DefaultDir() (dir string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return dir, err
	}
	dir = filepath.Join(homeDir, AppDir)
	return dir, err
}

// DefaultPath returns ~/.career-tailor/config.json.
func DefaultPath() (path string, err error) {
	var dir string
	dir, err = DefaultDir()
	if err != nil {
		return path, err
	}
	path = filepath.Join(dir, "config.json")
	return path, err
}

// GetGenerationModel returns the generation model or default if not specified.
func (c *Config) GetGenerationModel() (model string) {
	if c.Models.Generation != "" {
		model = c.Models.Generation
		return model
	}
	model = llm.DefaultModel
	return model
}

// RequestTimeout returns the per-call model timeout.
func (c *Config) RequestTimeout() (timeout time.Duration) {
	timeout = time.Duration(c.RequestTimeoutSeconds) * time.Second
	return timeout
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	cfg, err = read(configPath)
	if err != nil {
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// LoadStorage reads configuration for commands that only touch stored
// analyses or pending positions. Model credentials and the repository file
// are not required.
func LoadStorage(configPath string) (cfg Config, err error) {
	cfg, err = read(configPath)
	if err != nil {
		return cfg, err
	}

	err = cfg.ValidateStorage()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func read(configPath string) (cfg Config, err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'career-tailor init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}
	cfg.dir = filepath.Dir(path)

	cfg.ApplyEnv()

	return cfg, err
}

// ApplyEnv overrides file values with environment variables that are set.
func (c *Config) ApplyEnv() {
	if apiKey := os.Getenv(EnvAPIKey); apiKey != "" {
		c.AnthropicAPIKey = apiKey
	}
	if databaseURL := os.Getenv(EnvDatabaseURL); databaseURL != "" {
		c.Storage.DatabaseURL = databaseURL
	}
}

// Validate checks that all required configuration is present and fills
// defaults. Storage paths default to the config file's directory.
func (c *Config) Validate() (err error) {
	if c.Name == "" {
		err = errors.New("name is required in config")
		return err
	}

	if c.AnthropicAPIKey == "" {
		err = errors.Errorf("anthropic_api_key is required (set in config or %s env var)", EnvAPIKey)
		return err
	}

	if c.RepositoryLocation == "" {
		err = errors.New("repository_location is required in config")
		return err
	}

	_, err = os.Stat(c.RepositoryLocation)
	if os.IsNotExist(err) {
		err = errors.Errorf("repository file not found: %s", c.RepositoryLocation)
		return err
	}
	err = nil

	if c.MaxTokens < 0 {
		err = errors.New("max_tokens must not be negative")
		return err
	}

	if c.RequestTimeoutSeconds < 0 {
		err = errors.New("request_timeout_seconds must not be negative")
		return err
	}

	if c.Matching.MinRelevance < 0 || c.Matching.MinRelevance > 100 {
		err = errors.New("matching.min_relevance must be between 0 and 100")
		return err
	}

	if c.Matching.StatementsPerMissingPosition < 0 {
		err = errors.New("matching.statements_per_missing_position must not be negative")
		return err
	}

	err = c.applyDefaults()
	return err
}

// ValidateStorage fills defaults without requiring the model or repository
// settings that Validate demands.
func (c *Config) ValidateStorage() (err error) {
	err = c.applyDefaults()
	if err != nil {
		err = errors.Wrap(err, "failed to resolve storage paths")
		return err
	}
	return err
}

func (c *Config) applyDefaults() (err error) {
	dir := c.dir
	if dir == "" {
		dir, err = DefaultDir()
		if err != nil {
			return err
		}
	}

	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.Matching.StatementsPerMissingPosition == 0 {
		c.Matching.StatementsPerMissingPosition = DefaultStatementsPerMissingPosition
	}
	if c.Storage.HistoryDir == "" {
		c.Storage.HistoryDir = filepath.Join(dir, "history")
	}
	if c.Storage.PendingPath == "" {
		c.Storage.PendingPath = filepath.Join(dir, "pending_positions.json")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = DefaultOutputDir
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		Name:                  "your-name",
		AnthropicAPIKey:       "sk-ant-api03-...",
		RepositoryLocation:    filepath.Join(dir, "repository.json"),
		Models:                ModelsConfig{Generation: llm.DefaultModel},
		MaxTokens:             DefaultMaxTokens,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		Storage: StorageConfig{
			HistoryDir:  filepath.Join(dir, "history"),
			PendingPath: filepath.Join(dir, "pending_positions.json"),
		},
		Matching: MatchingConfig{
			RepairCoverage:               false,
			StatementsPerMissingPosition: DefaultStatementsPerMissingPosition,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Applications"),
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
