// Package config loads and validates the service configuration.
//
// DESIGN: Configuration comes from a YAML file with ${VAR:-default} env
// expansion, loaded once at startup and read-only afterwards. Secrets stay
// in the environment (.env via godotenv in main); the YAML only references
// them.
//
// FILES:
//   - config.go:     Root Config struct, Load(), Validate()
//   - providers.go:  LLM backend routing configuration
//   - monitoring.go: Logging settings
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the voice-order service.
type Config struct {
	Server       ServerConfig       `yaml:"server"`       // HTTP server settings
	LLM          LLMConfig          `yaml:"llm"`          // Generation backend routing
	Catalog      CatalogConfig      `yaml:"catalog"`      // Menu catalog data
	Orders       OrdersConfig       `yaml:"orders"`       // Order persistence
	Conversation ConversationConfig `yaml:"conversation"` // Dialogue settings
	STT          STTConfig          `yaml:"stt"`          // Speech-to-text
	Monitoring   MonitoringConfig   `yaml:"monitoring"`   // Logging
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port          int           `yaml:"port"`           // Port to listen on
	ReadTimeout   time.Duration `yaml:"read_timeout"`   // Max time to read request
	WriteTimeout  time.Duration `yaml:"write_timeout"`  // Max time to write response
	ClientOrigins string        `yaml:"client_origins"` // Comma-separated allowed CORS origins
}

// AllowedOrigins returns the normalized CORS origin list. Origins without a
// scheme get http:// prepended, and the local dev frontend ports are always
// included so a bare config still works against the stock web client.
func (s ServerConfig) AllowedOrigins() []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(origin string) {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			return
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			origin = "http://" + origin
		}
		if !seen[origin] {
			seen[origin] = true
			origins = append(origins, origin)
		}
	}
	for _, origin := range strings.Split(s.ClientOrigins, ",") {
		add(origin)
	}
	add("http://localhost:8080")
	add("http://127.0.0.1:8080")
	return origins
}

// CatalogConfig locates the menu catalog CSV files.
type CatalogConfig struct {
	DataDir string `yaml:"data_dir"` // Directory holding menus.csv, menu_items.csv, styles.csv
}

// OrdersConfig selects and parameterizes the order store.
type OrdersConfig struct {
	Store      string `yaml:"store"`       // "file" or "sqlite"
	Dir        string `yaml:"dir"`         // FileStore directory
	SQLitePath string `yaml:"sqlite_path"` // SQLiteStore database file
}

// ConversationConfig contains dialogue-level settings.
type ConversationConfig struct {
	// AssumedDate anchors relative date expressions ("tomorrow") to a fixed
	// calendar date so transcripts resolve deterministically.
	AssumedDate   string `yaml:"assumed_date"`
	LanguagesPath string `yaml:"languages_path"` // Optional override of the embedded language data
}

// STTConfig contains speech-to-text settings.
type STTConfig struct {
	Model string `yaml:"model"` // Transcription model id (e.g. whisper-1)
}

// expandEnvWithDefaults expands environment variables with support for
// default values. Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes, applying env var
// expansion, defaults, and validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills values a minimal config file may omit.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5001
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// Generation calls can take most of the remote timeout, so the
		// response deadline must sit above it.
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Orders.Store == "" {
		c.Orders.Store = "file"
	}
	if c.Orders.Dir == "" {
		c.Orders.Dir = "data/orders"
	}
	if c.STT.Model == "" {
		c.STT.Model = "whisper-1"
	}
	if c.Monitoring.LogLevel == "" {
		c.Monitoring.LogLevel = "info"
	}
	c.LLM.applyDefaults()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}

	switch c.Orders.Store {
	case "file":
		if c.Orders.Dir == "" {
			return fmt.Errorf("orders.dir is required for the file store")
		}
	case "sqlite":
		if c.Orders.SQLitePath == "" {
			return fmt.Errorf("orders.sqlite_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown orders.store: %q (must be file or sqlite)", c.Orders.Store)
	}

	if c.Conversation.AssumedDate != "" {
		if _, err := time.Parse("2006-01-02", c.Conversation.AssumedDate); err != nil {
			return fmt.Errorf("invalid conversation.assumed_date %q: %w", c.Conversation.AssumedDate, err)
		}
	}

	return c.LLM.Validate()
}
