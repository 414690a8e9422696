// Package config loads server configuration from layered sources.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/tidwall/jsonc"
)

// Config is the full server configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port int `json:"port"`
	// DataDir is the root of the JSON record store.
	DataDir string `json:"dataDir"`
	// LogLevel is the minimum log level ("debug", "info", ...).
	LogLevel string `json:"logLevel"`
	// LogPretty enables human-readable console logs.
	LogPretty bool `json:"logPretty"`
	// EnableCORS toggles the permissive CORS middleware.
	EnableCORS bool `json:"enableCORS"`

	// JWTSecret is the HS256 secret the identity gate verifies bearer
	// tokens with. Required for any authenticated route.
	JWTSecret string `json:"jwtSecret"`

	// Model selects the default language model as "provider/model",
	// e.g. "anthropic/claude-3-5-haiku-20241022" or "openai/gpt-4o-mini".
	Model string `json:"model"`

	// Provider holds per-provider connection settings.
	Provider map[string]ProviderConfig `json:"provider"`
}

// ProviderConfig holds connection settings for one LLM provider.
type ProviderConfig struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseURL"`
	MaxTokens int    `json:"maxTokens"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Port:       8080,
		DataDir:    defaultDataDir(),
		LogLevel:   "info",
		EnableCORS: true,
		Provider:   make(map[string]ProviderConfig),
	}
}

// Load builds the configuration from, in priority order:
//  1. built-in defaults
//  2. ~/.config/solace/solace.jsonc (or .json)
//  3. ./solace.jsonc (or .json) in the working directory
//  4. the file named by SOLACE_CONFIG
//  5. SOLACE_* environment variables
//
// Config files may contain JSONC comments and {env:VAR} placeholders.
func Load(directory string) (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		globalDir := filepath.Join(home, ".config", "solace")
		loadFile(filepath.Join(globalDir, "solace.jsonc"), cfg)
		loadFile(filepath.Join(globalDir, "solace.json"), cfg)
	}

	if directory != "" {
		loadFile(filepath.Join(directory, "solace.jsonc"), cfg)
		loadFile(filepath.Join(directory, "solace.json"), cfg)
	}

	if path := os.Getenv("SOLACE_CONFIG"); path != "" {
		loadFile(path, cfg)
	}

	applyEnv(cfg)

	return cfg, nil
}

// loadFile merges one config file into cfg. Missing or unparseable files are
// skipped.
func loadFile(path string, cfg *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	data = jsonc.ToJSON(data)
	data = interpolate(data)

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return
	}

	merge(cfg, &file)
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR} placeholders with environment values.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func merge(target, source *Config) {
	if source.Port != 0 {
		target.Port = source.Port
	}
	if source.DataDir != "" {
		target.DataDir = source.DataDir
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if source.LogPretty {
		target.LogPretty = true
	}
	if source.JWTSecret != "" {
		target.JWTSecret = source.JWTSecret
	}
	if source.Model != "" {
		target.Model = source.Model
	}
	for name, pc := range source.Provider {
		target.Provider[name] = pc
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SOLACE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("SOLACE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SOLACE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SOLACE_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SOLACE_MODEL"); v != "" {
		cfg.Model = v
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "solace")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".solace"
	}
	return filepath.Join(home, ".local", "share", "solace")
}
